package repo

import (
	"context"

	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
	"ngoledger/internal/sqlinline"
)

// NGORepositoryPG implements domain.NGORepository using PostgreSQL.
type NGORepositoryPG struct {
	sql infra.SQLExecutor
}

// NewNGORepository creates a new NGO repo.
func NewNGORepository(sql infra.SQLExecutor) *NGORepositoryPG {
	return &NGORepositoryPG{sql: sql}
}

// Create inserts an NGO and assigns its id.
func (r *NGORepositoryPG) Create(ctx context.Context, ngo *domain.NGO) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertNGO,
		ngo.Name, ngo.Description, ngo.LogoURL, ngo.CertificateURL, ngo.AdminID, workImages(ngo.WorkImages))
	return row.Scan(&ngo.ID)
}

// List returns every NGO ordered by id.
func (r *NGORepositoryPG) List(ctx context.Context) ([]domain.NGO, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListNGOs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.NGO{}
	for rows.Next() {
		ngo, err := scanNGO(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ngo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID fetches one NGO.
func (r *NGORepositoryPG) GetByID(ctx context.Context, id int64) (*domain.NGO, error) {
	return scanNGO(r.sql.QueryRow(ctx, sqlinline.QSelectNGOByID, id))
}

// FirstByAdmin returns the lowest-id NGO administered by the user.
func (r *NGORepositoryPG) FirstByAdmin(ctx context.Context, adminID string) (*domain.NGO, error) {
	return scanNGO(r.sql.QueryRow(ctx, sqlinline.QSelectFirstNGOByAdmin, adminID))
}

// Update stores the editable NGO fields.
func (r *NGORepositoryPG) Update(ctx context.Context, ngo *domain.NGO) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateNGO,
		ngo.ID, ngo.Name, ngo.Description, ngo.LogoURL, ngo.CertificateURL, workImages(ngo.WorkImages))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanNGO(row rowScanner) (*domain.NGO, error) {
	var n domain.NGO
	if err := row.Scan(&n.ID, &n.Name, &n.Description, &n.LogoURL, &n.CertificateURL, &n.AdminID, &n.Admin, &n.WorkImages); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if n.WorkImages == nil {
		n.WorkImages = []string{}
	}
	return &n, nil
}

func workImages(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}

var _ domain.NGORepository = (*NGORepositoryPG)(nil)
