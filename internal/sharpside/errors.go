package sharpside

import "errors"

// ErrIntegrityViolation marks hard errors that must halt the offending
// operation rather than degrade to a domain outcome like NO_PLAY.
var ErrIntegrityViolation = errors.New("sharp side integrity violation")
