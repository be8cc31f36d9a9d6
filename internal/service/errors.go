package service

import "errors"

// 服务层业务错误
var (
	ErrInvalidCredentials    = errors.New("service: invalid credentials")
	ErrFrameActionInvalid    = errors.New("service: frame action invalid")
	ErrGiftAlreadyRegistered = errors.New("service: gift already registered")
	ErrGiftNotRegistered     = errors.New("service: gift not registered")
)
