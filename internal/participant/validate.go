package participant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	dErrors "inscripciones/pkg/domain-errors"
	"inscripciones/pkg/sentinel"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// Validator checks participant input against the field rules and the cedula
// uniqueness constraint. Messages are user-facing and returned all at once so
// a form can mark every failing field in a single round trip.
type Validator struct {
	store Store
}

func NewValidator(store Store) *Validator {
	return &Validator{store: store}
}

// ValidateInput is the subset of fields the validator inspects.
type ValidateInput struct {
	Nombre          string
	Apellido        string
	Cedula          string
	Telefono        string
	FechaNacimiento string
}

// Validate runs every field check plus the uniqueness query. existingID is
// the record being edited, so a participant always matches their own cedula;
// pass the empty string on registration.
func (v *Validator) Validate(ctx context.Context, in ValidateInput, existingID string) error {
	fields := make(map[string]string)

	if strings.TrimSpace(in.Nombre) == "" {
		fields["nombre"] = "El nombre es obligatorio"
	}
	if strings.TrimSpace(in.Apellido) == "" {
		fields["apellido"] = "El apellido es obligatorio"
	}

	switch {
	case strings.TrimSpace(in.Cedula) == "":
		fields["cedula"] = "La cédula es obligatoria"
	case !digitsOnly.MatchString(in.Cedula):
		fields["cedula"] = "Solo números permitidos"
	}

	switch {
	case strings.TrimSpace(in.Telefono) == "":
		fields["telefono"] = "El teléfono es obligatorio"
	case !digitsOnly.MatchString(in.Telefono):
		fields["telefono"] = "Solo números permitidos"
	}

	if existingID == "" && strings.TrimSpace(in.FechaNacimiento) == "" {
		fields["fechaNacimiento"] = "La fecha de nacimiento es obligatoria"
	}

	// Only query uniqueness when the cedula itself is well-formed.
	if _, ok := fields["cedula"]; !ok {
		other, err := v.store.FindByCedula(ctx, in.Cedula)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			// free to use
		case err != nil:
			return fmt.Errorf("checking cedula uniqueness: %w", err)
		case other.ID != existingID:
			fields["cedula"] = "Ya existe un participante con esa cédula"
		}
	}

	if len(fields) > 0 {
		return dErrors.NewValidation("datos inválidos", fields)
	}
	return nil
}
