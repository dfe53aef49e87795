package auth

import "github.com/google/uuid"

func newUserID() string { return uuid.NewString() }
