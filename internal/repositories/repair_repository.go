package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"game_store_backend/internal/models"
)

// RepairRepository stores the service catalog and repair tickets.
type RepairRepository interface {
	CreateService(ctx context.Context, executor SQLExecutor, item *models.ServiceCatalogItem) (int64, error)
	GetServiceByID(ctx context.Context, id int64) (*models.ServiceCatalogItem, error)
	GetServices(ctx context.Context, category *string, activeOnly bool) ([]models.ServiceCatalogItem, error)
	UpdateService(ctx context.Context, executor SQLExecutor, item *models.ServiceCatalogItem) error
	DeleteService(ctx context.Context, executor SQLExecutor, id int64) error

	CreateRequest(ctx context.Context, executor SQLExecutor, req *models.ServiceRequest) (int64, error)
	GetRequestByID(ctx context.Context, id int64) (*models.ServiceRequest, error)
	GetRequests(ctx context.Context, filters models.ServiceRequestFilters) ([]models.ServiceRequest, int, error)
	UpdateRequest(ctx context.Context, executor SQLExecutor, req *models.ServiceRequest) error
	DeleteRequest(ctx context.Context, executor SQLExecutor, id int64) error
}

type repairRepository struct {
	db *sql.DB
}

func NewRepairRepository(db *sql.DB) RepairRepository {
	return &repairRepository{db: db}
}

const serviceColumns = `id, name, name_fr, name_ar, description, description_fr, description_ar, category, price,
	is_complex, estimated_duration, image_url, is_active, sort_order, created_at, updated_at`

func scanService(row scanner) (*models.ServiceCatalogItem, error) {
	s := &models.ServiceCatalogItem{}
	err := row.Scan(&s.ID, &s.Name, &s.NameFr, &s.NameAr, &s.Description, &s.DescriptionFr, &s.DescriptionAr,
		&s.Category, &s.Price, &s.IsComplex, &s.EstimatedDuration, &s.ImageURL, &s.IsActive, &s.SortOrder,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repairRepository) CreateService(ctx context.Context, executor SQLExecutor, item *models.ServiceCatalogItem) (int64, error) {
	query := `INSERT INTO services_catalog (name, name_fr, name_ar, description, description_fr, description_ar,
	                                        category, price, is_complex, estimated_duration, image_url, is_active, sort_order)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		item.Name, item.NameFr, item.NameAr, item.Description, item.DescriptionFr, item.DescriptionAr,
		item.Category, item.Price, item.IsComplex, item.EstimatedDuration, item.ImageURL, item.IsActive, item.SortOrder,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating service")
	}
	return item.ID, nil
}

func (r *repairRepository) GetServiceByID(ctx context.Context, id int64) (*models.ServiceCatalogItem, error) {
	s, err := scanService(r.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services_catalog WHERE id = $1`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting service ID %d", id))
	}
	return s, nil
}

func (r *repairRepository) GetServices(ctx context.Context, category *string, activeOnly bool) ([]models.ServiceCatalogItem, error) {
	var conditions []string
	var args []interface{}
	if category != nil {
		args = append(args, *category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if activeOnly {
		conditions = append(conditions, "is_active")
	}
	query := `SELECT ` + serviceColumns + ` FROM services_catalog`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY sort_order ASC, name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying services: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	items := []models.ServiceCatalogItem{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning service: %v", ErrDatabaseError, err)
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

func (r *repairRepository) UpdateService(ctx context.Context, executor SQLExecutor, item *models.ServiceCatalogItem) error {
	query := `UPDATE services_catalog
	          SET name = $1, name_fr = $2, name_ar = $3, description = $4, description_fr = $5, description_ar = $6,
	              category = $7, price = $8, is_complex = $9, estimated_duration = $10, image_url = $11,
	              is_active = $12, sort_order = $13, updated_at = NOW()
	          WHERE id = $14`
	result, err := executor.ExecContext(ctx, query,
		item.Name, item.NameFr, item.NameAr, item.Description, item.DescriptionFr, item.DescriptionAr,
		item.Category, item.Price, item.IsComplex, item.EstimatedDuration, item.ImageURL,
		item.IsActive, item.SortOrder, item.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating service ID %d", item.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating service ID %d", item.ID))
}

func (r *repairRepository) DeleteService(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM services_catalog WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting service ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting service ID %d", id))
}

const requestSelect = `SELECT sr.id, sr.service_id, sc.name, sr.client_id, sr.client_name, sr.client_phone, sr.client_email,
	sr.device_type, sr.device_brand, sr.device_model, sr.issue_description, sr.diagnosis, sr.estimated_cost,
	sr.final_cost, sr.status, sr.priority, sr.assigned_to, sr.is_complex, sr.started_at, sr.completed_at,
	sr.staff_id, sr.notes, sr.internal_notes, sr.created_at, sr.updated_at`

const requestFrom = ` FROM service_requests sr LEFT JOIN services_catalog sc ON sc.id = sr.service_id`

func scanRequest(row scanner, extra ...interface{}) (*models.ServiceRequest, error) {
	q := &models.ServiceRequest{}
	dest := []interface{}{&q.ID, &q.ServiceID, &q.ServiceName, &q.ClientID, &q.ClientName, &q.ClientPhone, &q.ClientEmail,
		&q.DeviceType, &q.DeviceBrand, &q.DeviceModel, &q.IssueDescription, &q.Diagnosis, &q.EstimatedCost,
		&q.FinalCost, &q.Status, &q.Priority, &q.AssignedTo, &q.IsComplex, &q.StartedAt, &q.CompletedAt,
		&q.StaffID, &q.Notes, &q.InternalNotes, &q.CreatedAt, &q.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *repairRepository) CreateRequest(ctx context.Context, executor SQLExecutor, req *models.ServiceRequest) (int64, error) {
	query := `INSERT INTO service_requests (service_id, client_id, client_name, client_phone, client_email, device_type,
	                                        device_brand, device_model, issue_description, estimated_cost, status,
	                                        priority, is_complex, staff_id, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		req.ServiceID, req.ClientID, req.ClientName, req.ClientPhone, req.ClientEmail, req.DeviceType,
		req.DeviceBrand, req.DeviceModel, req.IssueDescription, req.EstimatedCost, req.Status,
		req.Priority, req.IsComplex, req.StaffID, req.Notes,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating service request")
	}
	return req.ID, nil
}

func (r *repairRepository) GetRequestByID(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	q, err := scanRequest(r.db.QueryRowContext(ctx, requestSelect+requestFrom+` WHERE sr.id = $1`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting service request ID %d", id))
	}
	return q, nil
}

func (r *repairRepository) GetRequests(ctx context.Context, filters models.ServiceRequestFilters) ([]models.ServiceRequest, int, error) {
	var qb strings.Builder
	qb.WriteString(requestSelect + `, COUNT(*) OVER() AS total_count` + requestFrom)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("sr.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.AssignedTo != nil {
		conditions = append(conditions, fmt.Sprintf("sr.assigned_to = $%d", argCount))
		args = append(args, *filters.AssignedTo)
		argCount++
	}
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("sr.created_at >= $%d", argCount))
		args = append(args, *filters.From)
		argCount++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("sr.created_at < $%d", argCount))
		args = append(args, *filters.To)
		argCount++
	}
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(` ORDER BY CASE sr.priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'normal' THEN 2 ELSE 3 END,
	                 sr.created_at DESC`)
	if filters.PageSize > 0 {
		qb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, offsetFor(filters.Page, filters.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying service requests: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	list := []models.ServiceRequest{}
	total := 0
	for rows.Next() {
		q, err := scanRequest(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning service request: %v", ErrDatabaseError, err)
		}
		list = append(list, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating service requests: %v", ErrDatabaseError, err)
	}
	return list, total, nil
}

func (r *repairRepository) UpdateRequest(ctx context.Context, executor SQLExecutor, req *models.ServiceRequest) error {
	query := `UPDATE service_requests
	          SET service_id = $1, client_name = $2, client_phone = $3, client_email = $4, device_type = $5,
	              device_brand = $6, device_model = $7, issue_description = $8, diagnosis = $9, estimated_cost = $10,
	              final_cost = $11, status = $12, priority = $13, assigned_to = $14, is_complex = $15,
	              started_at = $16, completed_at = $17, notes = $18, internal_notes = $19, updated_at = NOW()
	          WHERE id = $20`
	result, err := executor.ExecContext(ctx, query,
		req.ServiceID, req.ClientName, req.ClientPhone, req.ClientEmail, req.DeviceType,
		req.DeviceBrand, req.DeviceModel, req.IssueDescription, req.Diagnosis, req.EstimatedCost,
		req.FinalCost, req.Status, req.Priority, req.AssignedTo, req.IsComplex,
		req.StartedAt, req.CompletedAt, req.Notes, req.InternalNotes, req.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating service request ID %d", req.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating service request ID %d", req.ID))
}

func (r *repairRepository) DeleteRequest(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM service_requests WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting service request ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting service request ID %d", id))
}
