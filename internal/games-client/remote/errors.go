package remote

import (
	"errors"
	"fmt"
)

// Kind classifica a falha de uma chamada remota
type Kind int

const (
	// Transport: a requisição não chegou a ter resposta (DNS, conexão, timeout)
	Transport Kind = iota + 1
	// HTTPStatus: resposta fora da faixa 2xx
	HTTPStatus
	// ParseFailure: corpo 2xx que não é o JSON esperado
	ParseFailure
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "transport"
	case HTTPStatus:
		return "http_status"
	case ParseFailure:
		return "parse_failure"
	default:
		return "unknown"
	}
}

// Error é devolvido por todas as operações do Client
type Error struct {
	Kind       Kind
	Method     string // "GET" | "POST"
	StatusCode int    // só em HTTPStatus
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case HTTPStatus:
		return fmt.Sprintf("%s failed: %d", e.Method, e.StatusCode)
	case ParseFailure:
		return fmt.Sprintf("%s failed: invalid response: %v", e.Method, e.Err)
	default:
		return fmt.Sprintf("%s failed: %v", e.Method, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode devolve o código HTTP de err, ou 0 se não houver
func StatusCode(err error) int {
	var re *Error
	if errors.As(err, &re) && re.Kind == HTTPStatus {
		return re.StatusCode
	}
	return 0
}

// IsKind informa se err é um *Error do tipo k
func IsKind(err error, k Kind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == k
}
