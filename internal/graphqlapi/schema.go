// Package graphqlapi exposes a read-only GraphQL view over users,
// organizations, plans, contacts, and groups. It sits behind the same bearer
// gate as the REST surface and adds no per-field permissions.
package graphqlapi

import (
	"github.com/graphql-go/graphql"

	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/usecase"
)

// Resolvers bundles the usecases the query fields read from.
type Resolvers struct {
	Users         usecase.UserUsecase
	Members       usecase.MemberUsecase
	Organizations usecase.OrganizationUsecase
	Plans         usecase.PlanUsecase
	Contacts      usecase.ContactUsecase
	Groups        usecase.GroupUsecase
}

var addressType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Address",
	Fields: graphql.Fields{
		"line1":      &graphql.Field{Type: graphql.String},
		"line2":      &graphql.Field{Type: graphql.String},
		"city":       &graphql.Field{Type: graphql.String},
		"state":      &graphql.Field{Type: graphql.String},
		"postalCode": &graphql.Field{Type: graphql.String},
		"country":    &graphql.Field{Type: graphql.String},
	},
})

var permissionsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Permissions",
	Fields: graphql.Fields{
		"isSuperAdmin":   &graphql.Field{Type: graphql.Boolean},
		"isAccountAdmin": &graphql.Field{Type: graphql.Boolean},
	},
})

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.User).ID.Hex(), nil
			},
		},
		"organizationId": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.User).OrganizationID.Hex(), nil
			},
		},
		"name":  &graphql.Field{Type: graphql.String},
		"email": &graphql.Field{Type: graphql.String},
		"roleTitles": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.User).RoleTitles, nil
			},
		},
		"status": &graphql.Field{Type: graphql.String},
		"permissions": &graphql.Field{
			Type: permissionsType,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.User).Permissions, nil
			},
		},
		"address": &graphql.Field{Type: addressType},
	},
})

var planType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SubscriptionPlan",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.SubscriptionPlan).ID.Hex(), nil
			},
		},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"duration":    &graphql.Field{Type: graphql.String},
		"maxNumberOfMembers": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.SubscriptionPlan).MaxNumberOfMembers, nil
			},
		},
		"features": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.SubscriptionPlan).Features, nil
			},
		},
		"isMostPopular": &graphql.Field{Type: graphql.Boolean},
		"status":        &graphql.Field{Type: graphql.String},
	},
})

var organizationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Organization",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.Organization).ID.Hex(), nil
			},
		},
		"name":    &graphql.Field{Type: graphql.String},
		"address": &graphql.Field{Type: addressType},
		"primaryAdmin": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.Organization).PrimaryAdminID.Hex(), nil
			},
		},
		"plan": &graphql.Field{
			Type: planType,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				snapshot := p.Source.(*model.Organization).PlanSnapshot
				if snapshot == nil {
					return nil, nil
				}
				return snapshot, nil
			},
		},
	},
})

var contactType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Contact",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.Contact).ID.Hex(), nil
			},
		},
		"contactEmail": &graphql.Field{Type: graphql.String},
		"relationship": &graphql.Field{Type: graphql.String},
		"aliases": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.Contact).Aliases, nil
			},
		},
		"contactUser": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				contact := p.Source.(*model.Contact)
				if contact.ContactUserID.IsZero() {
					return nil, nil
				}
				return contact.ContactUserID.Hex(), nil
			},
		},
	},
})

var groupMemberType = graphql.NewObject(graphql.ObjectConfig{
	Name: "GroupMember",
	Fields: graphql.Fields{
		"userId": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				member := p.Source.(model.GroupMember)
				if member.UserID.IsZero() {
					return nil, nil
				}
				return member.UserID.Hex(), nil
			},
		},
		"contactId": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				member := p.Source.(model.GroupMember)
				if member.ContactID.IsZero() {
					return nil, nil
				}
				return member.ContactID.Hex(), nil
			},
		},
		"role": &graphql.Field{Type: graphql.String},
	},
})

var groupType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Group",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.Group).ID.Hex(), nil
			},
		},
		"name": &graphql.Field{Type: graphql.String},
		"organizationId": &graphql.Field{
			Type: graphql.ID,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.Group).OrganizationID.Hex(), nil
			},
		},
		"members": &graphql.Field{
			Type: graphql.NewList(groupMemberType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.Group).Members, nil
			},
		},
	},
})

// NewSchema builds the read-only query schema.
func NewSchema(r *Resolvers) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"users": &graphql.Field{
				Type: graphql.NewList(userType),
				Args: graphql.FieldConfigArgument{
					"organizationId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.Members.List(p.Context, p.Args["organizationId"].(string), nil)
				},
			},
			"user": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.Users.Get(p.Context, p.Args["id"].(string))
				},
			},
			"organizations": &graphql.Field{
				Type: graphql.NewList(organizationType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					summaries, err := r.Organizations.ListWithMemberCounts(p.Context)
					if err != nil {
						return nil, err
					}
					orgs := make([]*model.Organization, 0, len(summaries))
					for _, summary := range summaries {
						orgs = append(orgs, summary.Organization)
					}
					return orgs, nil
				},
			},
			"organization": &graphql.Field{
				Type: organizationType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.Organizations.Get(p.Context, p.Args["id"].(string))
				},
			},
			"plans": &graphql.Field{
				Type: graphql.NewList(planType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.Plans.List(p.Context, "")
				},
			},
			"plan": &graphql.Field{
				Type: planType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.Plans.Get(p.Context, p.Args["id"].(string))
				},
			},
			"contacts": &graphql.Field{
				Type: graphql.NewList(contactType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.Contacts.List(p.Context, p.Args["userId"].(string))
				},
			},
			"contact": &graphql.Field{
				Type: contactType,
				Args: graphql.FieldConfigArgument{
					"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.Contacts.Get(p.Context, p.Args["id"].(string), p.Args["userId"].(string))
				},
			},
			"groups": &graphql.Field{
				Type: graphql.NewList(groupType),
				Args: graphql.FieldConfigArgument{
					"organizationId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.Groups.List(p.Context, p.Args["organizationId"].(string))
				},
			},
			"group": &graphql.Field{
				Type: groupType,
				Args: graphql.FieldConfigArgument{
					"id":             &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"organizationId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.Groups.Get(p.Context, p.Args["id"].(string), p.Args["organizationId"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}
