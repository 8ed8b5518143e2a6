package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/forum-inscriptions-api/internal/models"
)

// ErrDuplicateCode is returned when the unique index on numero_cp rejects an insert.
var ErrDuplicateCode = errors.New("registration code already exists")

const uniqueViolation = "23505"

const inscriptionColumns = `id, numero_cp, nom, prenom, nom_prenom, lieu_affectation_uo, statut,
date_inscription, date_modification, commentaires`

// InscriptionRepository persists registrations in the inscriptions table.
type InscriptionRepository struct {
	db *sqlx.DB
}

func NewInscriptionRepository(db *sqlx.DB) *InscriptionRepository {
	return &InscriptionRepository{db: db}
}

// List returns all inscriptions, newest first.
func (r *InscriptionRepository) List(ctx context.Context) ([]models.Inscription, error) {
	query := `SELECT ` + inscriptionColumns + ` FROM inscriptions ORDER BY date_inscription DESC`
	var records []models.Inscription
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list inscriptions: %w", err)
	}
	return records, nil
}

func (r *InscriptionRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM inscriptions WHERE numero_cp = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		return false, fmt.Errorf("check registration code: %w", err)
	}
	return exists, nil
}

// Create inserts an inscription, assigning its ID and creation time when unset.
func (r *InscriptionRepository) Create(ctx context.Context, inscription *models.Inscription) error {
	if inscription.ID == "" {
		inscription.ID = uuid.NewString()
	}
	if inscription.CreatedAt.IsZero() {
		inscription.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO inscriptions (id, numero_cp, nom, prenom, nom_prenom, lieu_affectation_uo, statut, date_inscription)
VALUES (:id, :numero_cp, :nom, :prenom, :nom_prenom, :lieu_affectation_uo, :statut, :date_inscription)`
	if _, err := r.db.NamedExecContext(ctx, query, inscription); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("create inscription %s: %w", inscription.Code, ErrDuplicateCode)
		}
		return fmt.Errorf("create inscription: %w", err)
	}
	return nil
}

// UpdateStatus writes status, comment and modification time together.
// An empty comment is stored as NULL.
func (r *InscriptionRepository) UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) error {
	const query = `UPDATE inscriptions SET statut = $1, commentaires = $2, date_modification = $3 WHERE id = $4`
	comment := sql.NullString{String: update.Comment, Valid: update.Comment != ""}
	res, err := r.db.ExecContext(ctx, query, update.Status, comment, update.ModifiedAt, id)
	if err != nil {
		return fmt.Errorf("update inscription status: %w", err)
	}
	return expectOneRow(res, "update inscription status")
}

func (r *InscriptionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inscription: %w", err)
	}
	return expectOneRow(res, "delete inscription")
}

func expectOneRow(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}
