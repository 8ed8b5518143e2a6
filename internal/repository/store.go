package repository

import "github.com/jmoiron/sqlx"

// Store bundles the Postgres repositories behind the gateway's Remote surface.
type Store struct {
	*InscriptionRepository
	*ConfigurationRepository
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		InscriptionRepository:   NewInscriptionRepository(db),
		ConfigurationRepository: NewConfigurationRepository(db),
	}
}
