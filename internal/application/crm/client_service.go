package crm

import (
	"context"
	"fmt"

	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientService handles client management
type ClientService struct {
	clientRepo crm.ClientRepository
	logger     *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo crm.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{clientRepo: clientRepo, logger: logger}
}

// CreateClientRequest represents a request to register a client
type CreateClientRequest struct {
	TenantID  uuid.UUID
	Name      string
	Email     string
	Phone     string
	CreatedBy *uuid.UUID
}

// CreateClient registers a new client
func (s *ClientService) CreateClient(ctx context.Context, req CreateClientRequest) (*crm.Client, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "create")
	defer span.End()

	if req.Email != "" {
		existing, err := s.clientRepo.FindByEmail(ctx, req.TenantID, req.Email)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check existing client: %w", err)
		}
		if existing != nil {
			return nil, shared.NewDomainError("CLIENT_EXISTS", "A client with this email already exists")
		}
	}

	client, err := crm.NewClient(req.TenantID, req.Name, req.Email, req.Phone)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.CreatedBy != nil {
		client.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	s.logger.Info("Client created", zap.String("client_id", client.ID.String()))
	return client, nil
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	TenantID uuid.UUID
	ClientID uuid.UUID
	Name     string
	Email    string
	Phone    string
	Notes    string
}

// UpdateClient updates a client's contact details
func (s *ClientService) UpdateClient(ctx context.Context, req UpdateClientRequest) (*crm.Client, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "update")
	defer span.End()

	client, err := s.getClient(ctx, req.TenantID, req.ClientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := client.Update(req.Name, req.Email, req.Phone, req.Notes); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	return client, nil
}

// GetClient loads a single client
func (s *ClientService) GetClient(ctx context.Context, tenantID, clientID uuid.UUID) (*crm.Client, error) {
	return s.getClient(ctx, tenantID, clientID)
}

// ListClients returns a paginated client list
func (s *ClientService) ListClients(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[crm.Client], error) {
	return s.clientRepo.List(ctx, tenantID, filter)
}

// DeleteClient removes a client
func (s *ClientService) DeleteClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	client, err := s.getClient(ctx, tenantID, clientID)
	if err != nil {
		return err
	}
	if err := s.clientRepo.Delete(ctx, client.ID); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	s.logger.Info("Client deleted", zap.String("client_id", clientID.String()))
	return nil
}

func (s *ClientService) getClient(ctx context.Context, tenantID, clientID uuid.UUID) (*crm.Client, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
	}
	return client, nil
}
