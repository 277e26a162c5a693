package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/mailer"
	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/notify"
	"github.com/taskport/taskport-api/internal/payment"
	"github.com/taskport/taskport-api/internal/repository"
)

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, duplicateKeyError()
		}
	}

	stored := *user
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.users[stored.ID.Hex()] = &stored

	out := stored
	return &out, nil
}

func (f *fakeUserRepo) CreateUsers(ctx context.Context, users []*model.User) ([]*model.User, error) {
	created := make([]*model.User, 0, len(users))
	for _, user := range users {
		stored, err := f.CreateUser(ctx, user)
		if err != nil {
			return nil, err
		}
		created = append(created, stored)
	}
	return created, nil
}

func (f *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	out := *user
	return &out, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) ListUsers(_ context.Context, params repository.FilterUsersParams) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.User
	for _, user := range f.users {
		if params.OrganizationID != nil && user.OrganizationID.Hex() != *params.OrganizationID {
			continue
		}
		if len(params.Statuses) > 0 && !containsString(params.Statuses, user.Status) {
			continue
		}
		copied := *user
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeUserRepo) CountUsers(_ context.Context, organizationID string, statuses []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, user := range f.users {
		if user.OrganizationID.Hex() != organizationID {
			continue
		}
		if len(statuses) > 0 && !containsString(statuses, user.Status) {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeUserRepo) CountUsersByOrganization(_ context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[string]int64)
	for _, user := range f.users {
		counts[user.OrganizationID.Hex()]++
	}
	return counts, nil
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, id string, params repository.UpdateUserParams) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// The Mongo repository refuses an update that sets nothing.
	if params.Name == nil && params.Email == nil && params.PasswordHash == nil &&
		params.Mobile == nil && params.CountryISDCode == nil && params.Address == nil &&
		params.EmailService == nil && params.SMSService == nil && params.RoleTitles == nil &&
		params.AccountAdmin == nil && params.Status == nil {
		return nil, errors.New("no user fields to update")
	}

	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.Mobile != nil {
		user.Mobile = *params.Mobile
	}
	if params.CountryISDCode != nil {
		user.CountryISDCode = *params.CountryISDCode
	}
	if params.Address != nil {
		user.Address = *params.Address
	}
	if params.EmailService != nil {
		user.EmailService = *params.EmailService
	}
	if params.SMSService != nil {
		user.SMSService = *params.SMSService
	}
	if params.RoleTitles != nil {
		user.RoleTitles = params.RoleTitles
	}
	if params.AccountAdmin != nil {
		user.Permissions.IsAccountAdmin = *params.AccountAdmin
	}
	if params.Status != nil {
		user.Status = *params.Status
	}
	user.UpdatedAt = time.Now()

	out := *user
	return &out, nil
}

func (f *fakeUserRepo) UpdateUserStatus(_ context.Context, id, fromStatus, toStatus string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok || user.Status != fromStatus {
		return nil, mongo.ErrNoDocuments
	}

	user.Status = toStatus
	user.UpdatedAt = time.Now()

	out := *user
	return &out, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.LastLogin = time.Now()
	return nil
}

func (f *fakeUserRepo) CompleteInvitedRegistration(_ context.Context, id, name, passwordHash string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok || user.Status != model.UserStatusInvited {
		return nil, mongo.ErrNoDocuments
	}

	user.Name = name
	user.PasswordHash = passwordHash
	user.Status = model.UserStatusActive
	user.UpdatedAt = time.Now()

	out := *user
	return &out, nil
}

// fakeCodeRepo is an in-memory CodeRepository with the same atomic
// consumption contract as the Mongo implementation.
type fakeCodeRepo struct {
	mu    sync.Mutex
	codes []*model.VerificationCode
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{}
}

func (f *fakeCodeRepo) CreateCode(_ context.Context, code *model.VerificationCode) (*model.VerificationCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *code
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.codes = append(f.codes, &stored)

	out := stored
	return &out, nil
}

func (f *fakeCodeRepo) ConsumeCode(_ context.Context, code, kind string) (*model.VerificationCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, stored := range f.codes {
		if stored.Kind != kind || stored.IsUsed {
			continue
		}
		if stored.MachineCode != code && stored.HumanCode != code {
			continue
		}
		if time.Now().After(stored.ExpiresAt) {
			continue
		}

		snapshot := *stored
		stored.IsUsed = true
		return &snapshot, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCodeRepo) DeleteExpiredCodes(_ context.Context) (int64, error) {
	return 0, nil
}

// fakeSessionRepo is an in-memory SessionRepository.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionRepo) CreateSession(_ context.Context, session *model.Session) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *session
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.sessions[stored.Token] = &stored

	out := stored
	return &out, nil
}

func (f *fakeSessionRepo) GetActiveSessionByToken(_ context.Context, token string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[token]
	if !ok || session.Status != model.SessionStatusActive {
		return nil, mongo.ErrNoDocuments
	}

	out := *session
	return &out, nil
}

func (f *fakeSessionRepo) ListActiveSessions(_ context.Context, userID string) ([]*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Session
	for _, session := range f.sessions {
		if session.UserID.Hex() == userID && session.Status == model.SessionStatusActive {
			copied := *session
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ExpireSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[token]
	if !ok || session.Status != model.SessionStatusActive {
		return mongo.ErrNoDocuments
	}
	session.Status = model.SessionStatusExpired
	return nil
}

func (f *fakeSessionRepo) ExpireOtherSessions(_ context.Context, userID, exceptToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, session := range f.sessions {
		if session.UserID.Hex() == userID && session.Token != exceptToken {
			session.Status = model.SessionStatusExpired
		}
	}
	return nil
}

// fakeOrgRepo is an in-memory OrganizationRepository recording subscription
// writes.
type fakeOrgRepo struct {
	mu               sync.Mutex
	orgs             map[string]*model.Organization
	subscriptionSets int
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{orgs: make(map[string]*model.Organization)}
}

func (f *fakeOrgRepo) CreateOrganization(_ context.Context, org *model.Organization) (*model.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *org
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.orgs[stored.ID.Hex()] = &stored

	out := stored
	return &out, nil
}

func (f *fakeOrgRepo) GetOrganization(_ context.Context, id string) (*model.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	org, ok := f.orgs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	out := *org
	return &out, nil
}

func (f *fakeOrgRepo) ListOrganizations(_ context.Context) ([]*model.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Organization
	for _, org := range f.orgs {
		copied := *org
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeOrgRepo) UpdateOrganization(_ context.Context, id string, params repository.UpdateOrganizationParams) (*model.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	org, ok := f.orgs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Name != nil {
		org.Name = *params.Name
	}
	if params.Address != nil {
		org.Address = *params.Address
	}
	if params.PrimaryAdminID != nil {
		adminID, err := bson.ObjectIDFromHex(*params.PrimaryAdminID)
		if err != nil {
			return nil, err
		}
		org.PrimaryAdminID = adminID
	}

	out := *org
	return &out, nil
}

func (f *fakeOrgRepo) SetAdminRefs(_ context.Context, id string, userID bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	org, ok := f.orgs[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	org.CreatedByID = userID
	org.PrimaryAdminID = userID
	return nil
}

func (f *fakeOrgRepo) SetSubscription(_ context.Context, id string, params repository.SetSubscriptionParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	org, ok := f.orgs[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	f.subscriptionSets++
	org.PlanID = params.PlanID
	org.PlanSnapshot = params.PlanSnapshot
	if params.BilledAmount != nil {
		org.BilledAmount = *params.BilledAmount
	}
	if params.StripeCustomerID != nil {
		org.StripeCustomerID = *params.StripeCustomerID
	}
	if params.StripeSubscriptionID != nil {
		org.StripeSubscriptionID = *params.StripeSubscriptionID
	}
	return nil
}

// fakePlanRepo is an in-memory PlanRepository.
type fakePlanRepo struct {
	mu    sync.Mutex
	plans map[string]*model.SubscriptionPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[string]*model.SubscriptionPlan)}
}

func (f *fakePlanRepo) CreatePlan(_ context.Context, plan *model.SubscriptionPlan) (*model.SubscriptionPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *plan
	stored.ID = bson.NewObjectID()
	f.plans[stored.ID.Hex()] = &stored

	out := stored
	return &out, nil
}

func (f *fakePlanRepo) GetPlan(_ context.Context, id string) (*model.SubscriptionPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	plan, ok := f.plans[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	out := *plan
	return &out, nil
}

func (f *fakePlanRepo) GetActivePlan(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	plan, err := f.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.Status != model.PlanStatusActive {
		return nil, mongo.ErrNoDocuments
	}
	return plan, nil
}

func (f *fakePlanRepo) ListPlans(_ context.Context, status string) ([]*model.SubscriptionPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.SubscriptionPlan
	for _, plan := range f.plans {
		if status != "" && plan.Status != status {
			continue
		}
		copied := *plan
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakePlanRepo) UpdatePlan(_ context.Context, id string, params repository.UpdatePlanParams) (*model.SubscriptionPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	plan, ok := f.plans[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Name != nil {
		plan.Name = *params.Name
	}
	if params.Description != nil {
		plan.Description = *params.Description
	}
	if params.IsMostPopular != nil {
		plan.IsMostPopular = *params.IsMostPopular
	}
	if params.Status != nil {
		plan.Status = *params.Status
	}

	out := *plan
	return &out, nil
}

// fakeContactRepo is a minimal ContactRepository.
type fakeContactRepo struct {
	mu       sync.Mutex
	contacts []*model.Contact
	linked   []string
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{}
}

func (f *fakeContactRepo) CreateContact(_ context.Context, contact *model.Contact) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *contact
	stored.ID = bson.NewObjectID()
	f.contacts = append(f.contacts, &stored)

	out := stored
	return &out, nil
}

func (f *fakeContactRepo) GetContact(_ context.Context, id, ownerID string) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, contact := range f.contacts {
		if contact.ID.Hex() == id && contact.OwnerID.Hex() == ownerID && !contact.IsDeleted {
			out := *contact
			return &out, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeContactRepo) ListContacts(_ context.Context, ownerID string) ([]*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Contact
	for _, contact := range f.contacts {
		if contact.OwnerID.Hex() == ownerID && !contact.IsDeleted {
			copied := *contact
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeContactRepo) CountContacts(ctx context.Context, ownerID string) (int64, error) {
	contacts, err := f.ListContacts(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return int64(len(contacts)), nil
}

func (f *fakeContactRepo) ListRelationships(_ context.Context, ownerID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, contact := range f.contacts {
		if contact.OwnerID.Hex() != ownerID || contact.IsDeleted || contact.Relationship == "" {
			continue
		}
		if !seen[contact.Relationship] {
			seen[contact.Relationship] = true
			out = append(out, contact.Relationship)
		}
	}
	return out, nil
}

func (f *fakeContactRepo) UpdateContact(_ context.Context, id string, params repository.UpdateContactParams) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, contact := range f.contacts {
		if contact.ID.Hex() != id || contact.IsDeleted {
			continue
		}
		if params.ContactEmail != nil {
			contact.ContactEmail = *params.ContactEmail
		}
		if params.Relationship != nil {
			contact.Relationship = *params.Relationship
		}
		if params.Aliases != nil {
			contact.Aliases = params.Aliases
		}
		out := *contact
		return &out, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeContactRepo) SoftDeleteContact(_ context.Context, id string) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, contact := range f.contacts {
		if contact.ID.Hex() == id && !contact.IsDeleted {
			contact.IsDeleted = true
			out := *contact
			return &out, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeContactRepo) LinkUserByEmail(_ context.Context, email string, userID bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.linked = append(f.linked, email)
	for _, contact := range f.contacts {
		if contact.ContactEmail == email {
			contact.ContactUserID = userID
		}
	}
	return nil
}

// fakeGroupRepo is an in-memory GroupRepository.
type fakeGroupRepo struct {
	mu     sync.Mutex
	groups []*model.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{}
}

func (f *fakeGroupRepo) CreateGroup(_ context.Context, group *model.Group) (*model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *group
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.groups = append(f.groups, &stored)

	out := stored
	return &out, nil
}

func (f *fakeGroupRepo) GetGroup(_ context.Context, id, organizationID string) (*model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, group := range f.groups {
		if group.ID.Hex() == id && group.OrganizationID.Hex() == organizationID && !group.IsDeleted {
			out := *group
			return &out, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeGroupRepo) ListGroups(_ context.Context, organizationID string) ([]*model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Group
	for _, group := range f.groups {
		if group.OrganizationID.Hex() == organizationID && !group.IsDeleted {
			copied := *group
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeGroupRepo) UpdateGroup(_ context.Context, id, organizationID string, params repository.UpdateGroupParams) (*model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, group := range f.groups {
		if group.ID.Hex() != id || group.OrganizationID.Hex() != organizationID || group.IsDeleted {
			continue
		}
		if params.Name != nil {
			group.Name = *params.Name
		}
		if params.Members != nil {
			group.Members = params.Members
		}
		out := *group
		return &out, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeGroupRepo) SoftDeleteGroup(_ context.Context, id, organizationID string) (*model.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, group := range f.groups {
		if group.ID.Hex() == id && group.OrganizationID.Hex() == organizationID && !group.IsDeleted {
			group.IsDeleted = true
			out := *group
			return &out, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

// fakeNotificationRepo is a minimal NotificationRepository.
type fakeNotificationRepo struct {
	mu    sync.Mutex
	saved []*model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) CreateNotification(_ context.Context, notification *model.Notification) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *notification
	stored.ID = bson.NewObjectID()
	stored.NotifiedAt = time.Now()
	f.saved = append(f.saved, &stored)

	out := stored
	return &out, nil
}

func (f *fakeNotificationRepo) ListNotifications(_ context.Context, recipientID string) ([]*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Notification
	for _, notification := range f.saved {
		if notification.RecipientID.Hex() == recipientID {
			copied := *notification
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeMailer records sent email instead of dialing SMTP.
type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Email
}

func (f *fakeMailer) Send(email mailer.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeMailer) SendBulk(emails []mailer.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, emails...)
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakeSMS records sent texts.
type fakeSMS struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSMS) Send(_ context.Context, to, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to+": "+text)
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (f *fakePublisher) Publish(_ string, event notify.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

// fakeProcessor is a scriptable payment.Processor.
type fakeProcessor struct {
	mu sync.Mutex

	failChange bool
	failCancel bool

	periodEnd time.Time
	chargeID  string

	customers     int
	subscriptions int
	changes       int
	cancels       int
	refunds       []int64
}

var errProcessorDown = &payment.Error{Message: "processor unavailable"}

func (f *fakeProcessor) CreateCustomer(_ context.Context, email, _ string) (*payment.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers++
	return &payment.Customer{ID: "cus_test", Email: email}, nil
}

func (f *fakeProcessor) GetCustomer(_ context.Context, customerID string) (*payment.Customer, error) {
	return &payment.Customer{ID: customerID}, nil
}

func (f *fakeProcessor) CreateSubscription(_ context.Context, _, _ string) (*payment.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscriptions++
	return &payment.Subscription{ID: "sub_test", Status: "active", CurrentPeriodEnd: f.periodEnd}, nil
}

func (f *fakeProcessor) ChangeSubscriptionPlan(_ context.Context, subscriptionID, _, idempotencyKey string) (*payment.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if idempotencyKey == "" {
		return nil, errors.New("missing idempotency key")
	}
	if f.failChange {
		return nil, errProcessorDown
	}
	f.changes++
	return &payment.Subscription{ID: subscriptionID, Status: "active", CurrentPeriodEnd: f.periodEnd}, nil
}

func (f *fakeProcessor) CancelSubscriptionNow(_ context.Context, subscriptionID, idempotencyKey string) (*payment.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if idempotencyKey == "" {
		return nil, errors.New("missing idempotency key")
	}
	if f.failCancel {
		return nil, errProcessorDown
	}
	f.cancels++
	return &payment.Subscription{ID: subscriptionID, Status: "canceled", CurrentPeriodEnd: f.periodEnd}, nil
}

func (f *fakeProcessor) CancelSubscriptionAtPeriodEnd(_ context.Context, subscriptionID, idempotencyKey string) (*payment.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if idempotencyKey == "" {
		return nil, errors.New("missing idempotency key")
	}
	return &payment.Subscription{ID: subscriptionID, Status: "active", CurrentPeriodEnd: f.periodEnd, CancelAtEnd: true}, nil
}

func (f *fakeProcessor) CreatePlan(_ context.Context, _ payment.PlanSpec) (string, error) {
	return "price_test", nil
}

func (f *fakeProcessor) AddCard(_ context.Context, _, _ string) (*payment.Card, error) {
	return &payment.Card{ID: "card_test"}, nil
}

func (f *fakeProcessor) ListCards(_ context.Context, _ string) ([]*payment.Card, error) {
	return nil, nil
}

func (f *fakeProcessor) UpdateCard(_ context.Context, _ string, update payment.CardUpdate) (*payment.Card, error) {
	return &payment.Card{ID: update.CardID}, nil
}

func (f *fakeProcessor) SetDefaultSource(_ context.Context, _, _ string) error {
	return nil
}

func (f *fakeProcessor) ListInvoices(_ context.Context, _, _ string, _ int) ([]*payment.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chargeID == "" {
		return nil, nil
	}
	return []*payment.Invoice{{Number: "INV-1", ChargeID: f.chargeID}}, nil
}

func (f *fakeProcessor) UpcomingInvoice(_ context.Context, _ string) (*payment.Invoice, error) {
	return &payment.Invoice{Number: "INV-NEXT"}, nil
}

func (f *fakeProcessor) Refund(_ context.Context, _ string, amountCents int64, idempotencyKey string) (*payment.Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if idempotencyKey == "" {
		return nil, errors.New("missing idempotency key")
	}
	f.refunds = append(f.refunds, amountCents)
	return &payment.Refund{ID: "re_test", AmountCents: amountCents, Status: "succeeded"}, nil
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
