package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/repository"
)

// GroupUsecase manages groups within an organization.
type GroupUsecase interface {
	Create(ctx context.Context, creator *model.User, params CreateGroupParams) (*model.Group, error)
	Get(ctx context.Context, id, organizationID string) (*model.Group, error)
	List(ctx context.Context, organizationID string) ([]*model.Group, error)
	Update(ctx context.Context, id, organizationID string, params repository.UpdateGroupParams) (*model.Group, error)
	Delete(ctx context.Context, id, organizationID string) error
}

// CreateGroupParams defines the parameters for creating a group.
type CreateGroupParams struct {
	Name    string
	Members []model.GroupMember
}

var ErrGroupNotFound = errors.New("group not found")

type groupUsecase struct {
	groupRepo repository.GroupRepository
}

// NewGroupUsecase creates the group usecase.
func NewGroupUsecase(groupRepo repository.GroupRepository) GroupUsecase {
	return &groupUsecase{groupRepo: groupRepo}
}

func (u *groupUsecase) Create(
	ctx context.Context,
	creator *model.User,
	params CreateGroupParams,
) (*model.Group, error) {
	members := params.Members

	// The creator always belongs to the group and leads it.
	found := false
	for i, member := range members {
		if member.UserID == creator.ID {
			members[i].Role = model.GroupRoleLeaderAndAdmin
			found = true
			break
		}
	}
	if !found {
		members = append(members, model.GroupMember{
			UserID: creator.ID,
			Role:   model.GroupRoleLeaderAndAdmin,
		})
	}

	return u.groupRepo.CreateGroup(ctx, &model.Group{
		Name:           params.Name,
		OrganizationID: creator.OrganizationID,
		Members:        members,
		CreatedByID:    creator.ID,
	})
}

func (u *groupUsecase) Get(ctx context.Context, id, organizationID string) (*model.Group, error) {
	group, err := u.groupRepo.GetGroup(ctx, id, organizationID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGroupNotFound
		}

		return nil, err
	}

	return group, nil
}

func (u *groupUsecase) List(ctx context.Context, organizationID string) ([]*model.Group, error) {
	return u.groupRepo.ListGroups(ctx, organizationID)
}

func (u *groupUsecase) Update(
	ctx context.Context,
	id, organizationID string,
	params repository.UpdateGroupParams,
) (*model.Group, error) {
	group, err := u.groupRepo.UpdateGroup(ctx, id, organizationID, params)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGroupNotFound
		}

		return nil, err
	}

	return group, nil
}

func (u *groupUsecase) Delete(ctx context.Context, id, organizationID string) error {
	if _, err := u.groupRepo.SoftDeleteGroup(ctx, id, organizationID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrGroupNotFound
		}

		return err
	}

	return nil
}
