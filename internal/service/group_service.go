package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// GroupService manages groups and their members.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group.
func (s *GroupService) CreateGroup(ctx context.Context, name, description string) (*models.Group, error) {
	slog.Info("CreateGroup request received", "name", name)

	group := &models.Group{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	if errs := group.Validate(); len(errs) > 0 {
		return nil, invalid(errs...)
	}

	// Save to storage (generates ID and timestamps)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID)
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	slog.Info("GetGroup request received", "group_id", groupID)

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return group, nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, err
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return groups, nil
}

// AddMember adds a member to an existing group.
func (s *GroupService) AddMember(ctx context.Context, groupID, name, email string) (*models.Member, error) {
	slog.Info("AddMember request received", "group_id", groupID, "name", name)

	member := &models.Member{
		GroupID: groupID,
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
	}
	if errs := member.Validate(); len(errs) > 0 {
		return nil, invalid(errs...)
	}

	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	existing, err := s.store.ListMembersByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, m := range existing {
		if strings.EqualFold(m.Name, member.Name) {
			return nil, invalid(fmt.Sprintf("member %q already exists in this group", member.Name))
		}
	}

	if err := s.store.CreateMember(ctx, member); err != nil {
		slog.Error("AddMember failed", "group_id", groupID, "error", err)
		return nil, err
	}

	slog.Info("Member added", "group_id", groupID, "member_id", member.ID)
	return member, nil
}

// ListMembers returns a group's members in join order.
func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListMembersByGroup(ctx, groupID)
}
