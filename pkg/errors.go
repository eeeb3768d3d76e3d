// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Service katmanı bu sentinel'leri %w ile wrap'leyerek döner:
//
//	return fmt.Errorf("%w: role not found", pkg.ErrNotFound)
//
// Handler katmanı errors.Is ile chain'i kontrol edip HTTP status'a
// map'ler (bkz. response.go). String karşılaştırması yapılmaz.
package pkg

import "errors"

// Domain-level error'lar.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
)
