package domain

import "errors"

// Kind agrupa os erros pela forma como o chamador deve reagir.
type Kind string

const (
	KindUnknown         Kind = "unknown"
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindNotFound        Kind = "not_found"
	KindAuthorization   Kind = "authorization"
	KindStateTransition Kind = "state_transition"
)

// Error é o erro de domínio com código estável para a borda HTTP e para métricas.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is compara pelo código, permitindo errors.Is contra os sentinelas mesmo após Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap anexa uma causa a um sentinela preservando código e categoria.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Code: sentinel.Code, Message: sentinel.Message, Cause: cause}
}

// KindOf devolve a categoria do primeiro *Error encontrado na cadeia.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf devolve o código do primeiro *Error da cadeia ou "internal".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}

// ErrNotFound é devolvido pelos repositórios quando a linha não existe.
var ErrNotFound = errors.New("registro nao encontrado")

var (
	ErrInvalidConfig = newError(KindValidation, "INVALID_CONFIG", "configuracao de sorteio invalida")
	ErrInvalidEntry  = newError(KindValidation, "INVALID_ENTRY", "entrada invalida")
	ErrPhotoRequired = newError(KindValidation, "PHOTO_REQUIRED", "foto obrigatoria para participar")

	ErrEntryCapReached     = newError(KindConflict, "ENTRY_CAP_REACHED", "limite de entradas por participante atingido")
	ErrPhotoAlreadyUsed    = newError(KindConflict, "PHOTO_ALREADY_USED", "foto ja utilizada em outra entrada")
	ErrNotAcceptingEntries = newError(KindConflict, "CONFIG_NOT_ACCEPTING_ENTRIES", "sorteio nao aceita novas entradas")
	ErrActiveConfigExists  = newError(KindConflict, "ACTIVE_CONFIG_EXISTS", "ja existe um sorteio ativo para o evento")
	ErrConfigLocked        = newError(KindConflict, "CONFIG_LOCKED", "configuracao bloqueada para edicao")
	ErrAlreadyExecuting    = newError(KindConflict, "ALREADY_EXECUTING", "sorteio em execucao")
	ErrAlreadyCompleted    = newError(KindConflict, "ALREADY_COMPLETED", "sorteio ja realizado")
	ErrConfigCancelled     = newError(KindConflict, "CONFIG_CANCELLED", "sorteio cancelado")
	ErrAlreadyClaimed      = newError(KindConflict, "ALREADY_CLAIMED", "premio ja resgatado")
	ErrAdmissionThrottled  = newError(KindConflict, "ADMISSION_THROTTLED", "muitas tentativas de entrada, tente novamente")

	ErrConfigNotFound = newError(KindNotFound, "CONFIG_NOT_FOUND", "sorteio nao encontrado")
	ErrWinnerNotFound = newError(KindNotFound, "WINNER_NOT_FOUND", "ganhador nao encontrado")

	ErrUnauthorized = newError(KindAuthorization, "UNAUTHORIZED", "acao restrita a organizadores")

	ErrInvalidTransition = newError(KindStateTransition, "INVALID_TRANSITION", "transicao de status invalida")
	ErrDrawPersistence   = newError(KindStateTransition, "DRAW_PERSISTENCE_FAILED", "falha ao gravar resultado do sorteio")
)
