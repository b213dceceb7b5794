package domain

import "fmt"

// Result es el contrato completo que ven los colaboradores del registry.
type Result int

const (
	Success Result = iota
	Updated
	AlreadyExists
	InvalidName
	AccountAlreadyRegistered
)

var resultCodes = [...]string{
	Success:                  "SUCCESS",
	Updated:                  "UPDATED",
	AlreadyExists:            "ALREADY_EXISTS",
	InvalidName:              "INVALID_NAME",
	AccountAlreadyRegistered: "ACCOUNT_ALREADY_REGISTERED",
}

func (r Result) String() string {
	if r < 0 || int(r) >= len(resultCodes) {
		return fmt.Sprintf("Result(%d)", int(r))
	}
	return resultCodes[r]
}

// OK es true para SUCCESS y UPDATED.
func (r Result) OK() bool { return r == Success || r == Updated }

func ParseResult(code string) (Result, error) {
	for i, c := range resultCodes {
		if c == code {
			return Result(i), nil
		}
	}
	return 0, fmt.Errorf("unknown result code %q", code)
}

// ResultVisitor obliga a cubrir todas las variantes: un renderer que olvida
// una no compila.
type ResultVisitor[T any] interface {
	Success() T
	Updated() T
	AlreadyExists() T
	InvalidName() T
	AccountAlreadyRegistered() T
}

func VisitResult[T any](r Result, v ResultVisitor[T]) T {
	switch r {
	case Success:
		return v.Success()
	case Updated:
		return v.Updated()
	case AlreadyExists:
		return v.AlreadyExists()
	case InvalidName:
		return v.InvalidName()
	case AccountAlreadyRegistered:
		return v.AccountAlreadyRegistered()
	}
	panic(fmt.Sprintf("domain: unhandled result %d", int(r)))
}
