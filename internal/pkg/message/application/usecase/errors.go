package usecase

import "fmt"

// ErrPersistence indicates the message store was unavailable inside a use case.
var ErrPersistence = fmt.Errorf("message use case persistence error")
