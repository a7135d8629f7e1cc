package participant

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"inscripciones/pkg/sentinel"
)

// PostgresStore is the production Store backed by PostgreSQL. The payment
// history rides in a JSONB column since entries are append-only and always
// read with their participant.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the participantes table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS participantes (
			id                 TEXT PRIMARY KEY,
			cedula             TEXT NOT NULL UNIQUE,
			nombre             TEXT NOT NULL,
			apellido           TEXT NOT NULL,
			telefono           TEXT NOT NULL,
			fecha_nacimiento   TEXT NOT NULL,
			edad               INT NOT NULL,
			miembro            BOOLEAN NOT NULL,
			bautizado          BOOLEAN NOT NULL,
			exento             BOOLEAN NOT NULL,
			pago               BOOLEAN NOT NULL,
			monto_pagado       NUMERIC(12,2) NOT NULL,
			monto_pagado2      NUMERIC(12,2) NOT NULL,
			excedente          NUMERIC(12,2) NOT NULL,
			forma_pago         TEXT NOT NULL,
			referencia         TEXT NOT NULL,
			zelle_info         TEXT NOT NULL,
			segunda_forma_pago TEXT NOT NULL,
			referencia2        TEXT NOT NULL,
			zelle_info2        TEXT NOT NULL,
			fecha_pago         TIMESTAMPTZ,
			tasa_bcv_pago      NUMERIC(12,4) NOT NULL,
			historial_pagos    JSONB NOT NULL DEFAULT '[]',
			registrado_por     TEXT NOT NULL,
			created_at         TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrating participantes: %w", err)
	}
	return nil
}

const participantColumns = `id, cedula, nombre, apellido, telefono, fecha_nacimiento, edad,
	miembro, bautizado, exento, pago, monto_pagado, monto_pagado2, excedente,
	forma_pago, referencia, zelle_info, segunda_forma_pago, referencia2, zelle_info2,
	fecha_pago, tasa_bcv_pago, historial_pagos, registrado_por, created_at`

func (s *PostgresStore) Create(ctx context.Context, p Participant) error {
	history, err := json.Marshal(p.HistorialPagos)
	if err != nil {
		return fmt.Errorf("marshaling payment history: %w", err)
	}

	var fechaPago sql.NullTime
	if !p.FechaPago.IsZero() {
		fechaPago = sql.NullTime{Time: p.FechaPago, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO participantes (`+participantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		p.ID, p.Cedula, p.Nombre, p.Apellido, p.Telefono, p.FechaNacimiento, p.Edad,
		p.Miembro, p.Bautizado, p.Exento, p.Pago, p.MontoPagado, p.MontoPagado2, p.Excedente,
		string(p.FormaPago), p.Referencia, p.ZelleInfo, string(p.SegundaFormaPago), p.Referencia2, p.ZelleInfo2,
		fechaPago, p.TasaBCVPago, history, p.RegistradoPor, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("inserting participant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p Participant) error {
	history, err := json.Marshal(p.HistorialPagos)
	if err != nil {
		return fmt.Errorf("marshaling payment history: %w", err)
	}

	var fechaPago sql.NullTime
	if !p.FechaPago.IsZero() {
		fechaPago = sql.NullTime{Time: p.FechaPago, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE participantes SET
			cedula = $2, nombre = $3, apellido = $4, telefono = $5,
			fecha_nacimiento = $6, edad = $7, miembro = $8, bautizado = $9,
			exento = $10, pago = $11, monto_pagado = $12, monto_pagado2 = $13,
			excedente = $14, forma_pago = $15, referencia = $16, zelle_info = $17,
			segunda_forma_pago = $18, referencia2 = $19, zelle_info2 = $20,
			fecha_pago = $21, tasa_bcv_pago = $22, historial_pagos = $23,
			registrado_por = $24
		WHERE id = $1`,
		p.ID, p.Cedula, p.Nombre, p.Apellido, p.Telefono,
		p.FechaNacimiento, p.Edad, p.Miembro, p.Bautizado,
		p.Exento, p.Pago, p.MontoPagado, p.MontoPagado2,
		p.Excedente, string(p.FormaPago), p.Referencia, p.ZelleInfo,
		string(p.SegundaFormaPago), p.Referencia2, p.ZelleInfo2,
		fechaPago, p.TasaBCVPago, history,
		p.RegistradoPor,
	)
	if err != nil {
		return fmt.Errorf("updating participant: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM participantes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting participant: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (Participant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participantes WHERE id = $1`, id)
	return scanParticipant(row)
}

func (s *PostgresStore) FindByCedula(ctx context.Context, cedula string) (Participant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participantes WHERE cedula = $1`, cedula)
	return scanParticipant(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+participantColumns+` FROM participantes ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating participants: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row rowScanner) (Participant, error) {
	var (
		p          Participant
		formaPago  string
		formaPago2 string
		fechaPago  sql.NullTime
		history    []byte
	)
	err := row.Scan(
		&p.ID, &p.Cedula, &p.Nombre, &p.Apellido, &p.Telefono, &p.FechaNacimiento, &p.Edad,
		&p.Miembro, &p.Bautizado, &p.Exento, &p.Pago, &p.MontoPagado, &p.MontoPagado2, &p.Excedente,
		&formaPago, &p.Referencia, &p.ZelleInfo, &formaPago2, &p.Referencia2, &p.ZelleInfo2,
		&fechaPago, &p.TasaBCVPago, &history, &p.RegistradoPor, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Participant{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Participant{}, fmt.Errorf("scanning participant: %w", err)
	}

	p.FormaPago = PaymentMethod(formaPago)
	p.SegundaFormaPago = PaymentMethod(formaPago2)
	if fechaPago.Valid {
		p.FechaPago = fechaPago.Time
	}
	if err := json.Unmarshal(history, &p.HistorialPagos); err != nil {
		return Participant{}, fmt.Errorf("unmarshaling payment history: %w", err)
	}
	return p, nil
}

// isUniqueViolation matches the Postgres unique_violation SQLSTATE without
// binding the store to a specific driver error type.
func isUniqueViolation(err error) bool {
	var coder interface{ SQLState() string }
	if errors.As(err, &coder) {
		return coder.SQLState() == "23505"
	}
	return false
}
