package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/forum-inscriptions-api/internal/models"
)

func newInscriptionRepoMock(t *testing.T) (*InscriptionRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewInscriptionRepository(sqlxDB), mock, func() { db.Close() }
}

func inscriptionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "numero_cp", "nom", "prenom", "nom_prenom", "lieu_affectation_uo", "statut", "date_inscription", "date_modification", "commentaires"})
}

func TestInscriptionRepositoryList(t *testing.T) {
	repo, mock, cleanup := newInscriptionRepoMock(t)
	defer cleanup()

	created := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	rows := inscriptionRows().
		AddRow("a", "1234567A", "Dupont", "Jean", "Dupont Jean", "Paris Nord", "Demande reçue", created, nil, nil).
		AddRow("b", "TESTCP01", "Martin", "Marie", "Martin Marie", "Lyon", "Demande acceptée", created.Add(-time.Hour), created, "ok")
	mock.ExpectQuery("SELECT id, numero_cp").WillReturnRows(rows)

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.StatusReceived, records[0].Status)
	assert.Nil(t, records[0].Comment)
	require.NotNil(t, records[1].Comment)
	assert.Equal(t, "ok", *records[1].Comment)
	require.NotNil(t, records[1].ModifiedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscriptionRepositoryExistsByCode(t *testing.T) {
	repo, mock, cleanup := newInscriptionRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT EXISTS").WithArgs("8710320P").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByCode(context.Background(), "8710320P")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscriptionRepositoryCreateAssignsIDAndDate(t *testing.T) {
	repo, mock, cleanup := newInscriptionRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO inscriptions").
		WithArgs(sqlmock.AnyArg(), "AB123456", "Durand", "Paul", "Durand Paul", "Marseille", "Demande reçue", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.Inscription{
		Code:      "AB123456",
		LastName:  "Durand",
		FirstName: "Paul",
		FullName:  "Durand Paul",
		Unit:      "Marseille",
		Status:    models.StatusReceived,
	}
	require.NoError(t, repo.Create(context.Background(), record))
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscriptionRepositoryCreateDuplicate(t *testing.T) {
	repo, mock, cleanup := newInscriptionRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO inscriptions").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Inscription{Code: "1234567A", Status: models.StatusReceived})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateCode))
}

func TestInscriptionRepositoryUpdateStatus(t *testing.T) {
	repo, mock, cleanup := newInscriptionRepoMock(t)
	defer cleanup()

	modified := time.Date(2025, 10, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE inscriptions SET statut").
		WithArgs("Demande acceptée", "validé", modified, "2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "2", models.StatusUpdate{
		Status:     models.StatusAccepted,
		Comment:    "validé",
		ModifiedAt: modified,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscriptionRepositoryUpdateStatusEmptyCommentIsNull(t *testing.T) {
	repo, mock, cleanup := newInscriptionRepoMock(t)
	defer cleanup()

	modified := time.Date(2025, 10, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE inscriptions SET statut").
		WithArgs("Demande refusée", nil, modified, "2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "2", models.StatusUpdate{Status: models.StatusRefused, ModifiedAt: modified})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscriptionRepositoryUpdateStatusMissing(t *testing.T) {
	repo, mock, cleanup := newInscriptionRepoMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE inscriptions SET statut").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.StatusUpdate{Status: models.StatusRefused, ModifiedAt: time.Now()})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestInscriptionRepositoryDelete(t *testing.T) {
	repo, mock, cleanup := newInscriptionRepoMock(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM inscriptions").WithArgs("3").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM inscriptions").WithArgs("3").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "3"))
	err := repo.Delete(context.Background(), "3")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
