package model

import "errors"

var ErrorMessageNotFound = errors.New("message not found")
var ErrorDuplicateMessage = errors.New("duplicate message")
var ErrorStaleStatus = errors.New("message is not in the expected status")
var ErrorNotDeletable = errors.New("only failed messages can be deleted")
var ErrorInvalidPassword = errors.New("invalid password")
