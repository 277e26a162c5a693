package payment

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProcessor implements Processor on top of the Stripe API.
type StripeProcessor struct {
	api    *client.API
	logger *zerolog.Logger
}

// NewStripeProcessor creates a Stripe-backed processor with the given secret key.
func NewStripeProcessor(secretKey string, logger *zerolog.Logger) *StripeProcessor {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeProcessor{
		api:    api,
		logger: logger,
	}
}

func (p *StripeProcessor) CreateCustomer(ctx context.Context, email, sourceToken string) (*Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	if sourceToken != "" {
		params.Source = stripe.String(sourceToken)
	}

	cust, err := p.api.Customers.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return customerFromStripe(cust), nil
}

func (p *StripeProcessor) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := p.api.Customers.Get(customerID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return customerFromStripe(cust), nil
}

func (p *StripeProcessor) CreateSubscription(ctx context.Context, customerID, planRef string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(planRef)},
		},
	}
	params.Context = ctx

	sub, err := p.api.Subscriptions.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return subscriptionFromStripe(sub), nil
}

func (p *StripeProcessor) ChangeSubscriptionPlan(ctx context.Context, subscriptionID, planRef, idempotencyKey string) (*Subscription, error) {
	getParams := &stripe.SubscriptionParams{}
	getParams.Context = ctx

	current, err := p.api.Subscriptions.Get(subscriptionID, getParams)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	if len(current.Items.Data) == 0 {
		return nil, &Error{Message: "subscription has no items"}
	}

	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(current.Items.Data[0].ID),
				Price: stripe.String(planRef),
			},
		},
		ProrationDate: stripe.Int64(time.Now().Unix()),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	sub, err := p.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return subscriptionFromStripe(sub), nil
}

func (p *StripeProcessor) CancelSubscriptionNow(ctx context.Context, subscriptionID, idempotencyKey string) (*Subscription, error) {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	sub, err := p.api.Subscriptions.Cancel(subscriptionID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return subscriptionFromStripe(sub), nil
}

func (p *StripeProcessor) CancelSubscriptionAtPeriodEnd(ctx context.Context, subscriptionID, idempotencyKey string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	sub, err := p.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return subscriptionFromStripe(sub), nil
}

func (p *StripeProcessor) CreatePlan(ctx context.Context, spec PlanSpec) (string, error) {
	interval := stripe.PriceRecurringIntervalMonth
	if spec.Duration == "yearly" {
		interval = stripe.PriceRecurringIntervalYear
	}

	params := &stripe.PriceParams{
		UnitAmount: stripe.Int64(int64(math.Round(spec.Price * 100))),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(string(interval)),
		},
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(spec.Name),
		},
	}
	params.Context = ctx

	price, err := p.api.Prices.New(params)
	if err != nil {
		return "", wrapStripeError(err)
	}

	return price.ID, nil
}

func (p *StripeProcessor) AddCard(ctx context.Context, customerID, sourceToken string) (*Card, error) {
	params := &stripe.CardParams{
		Customer: stripe.String(customerID),
		Token:    stripe.String(sourceToken),
	}
	params.Context = ctx

	card, err := p.api.Cards.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return cardFromStripe(card, ""), nil
}

func (p *StripeProcessor) ListCards(ctx context.Context, customerID string) ([]*Card, error) {
	cust, err := p.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	params := &stripe.CardListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx

	var cards []*Card
	iter := p.api.Cards.List(params)
	for iter.Next() {
		cards = append(cards, cardFromStripe(iter.Card(), cust.DefaultSource))
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStripeError(err)
	}

	return cards, nil
}

func (p *StripeProcessor) UpdateCard(ctx context.Context, customerID string, update CardUpdate) (*Card, error) {
	params := &stripe.CardParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	if update.ExpMonth != "" {
		params.ExpMonth = stripe.String(update.ExpMonth)
	}
	if update.ExpYear != "" {
		params.ExpYear = stripe.String(update.ExpYear)
	}
	if update.CardHolderName != "" {
		params.Name = stripe.String(update.CardHolderName)
	}

	card, err := p.api.Cards.Update(update.CardID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return cardFromStripe(card, ""), nil
}

func (p *StripeProcessor) SetDefaultSource(ctx context.Context, customerID, cardID string) error {
	params := &stripe.CustomerParams{
		DefaultSource: stripe.String(cardID),
	}
	params.Context = ctx

	if _, err := p.api.Customers.Update(customerID, params); err != nil {
		return wrapStripeError(err)
	}

	return nil
}

func (p *StripeProcessor) ListInvoices(ctx context.Context, customerID, subscriptionID string, limit int) ([]*Invoice, error) {
	params := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	if subscriptionID != "" {
		params.Subscription = stripe.String(subscriptionID)
	}
	if limit > 0 {
		params.Limit = stripe.Int64(int64(limit))
	}

	var invoices []*Invoice
	iter := p.api.Invoices.List(params)
	for iter.Next() {
		invoices = append(invoices, invoiceFromStripe(iter.Invoice()))
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStripeError(err)
	}

	return invoices, nil
}

func (p *StripeProcessor) UpcomingInvoice(ctx context.Context, customerID string) (*Invoice, error) {
	params := &stripe.InvoiceUpcomingParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx

	inv, err := p.api.Invoices.Upcoming(params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Code == stripe.ErrorCodeInvoiceUpcomingNone {
			return nil, &Error{Code: CodeInvoiceUpcomingNone, Message: "no upcoming invoice"}
		}
		return nil, wrapStripeError(err)
	}

	return invoiceFromStripe(inv), nil
}

func (p *StripeProcessor) Refund(ctx context.Context, chargeID string, amountCents int64, idempotencyKey string) (*Refund, error) {
	params := &stripe.RefundParams{
		Charge: stripe.String(chargeID),
		Amount: stripe.Int64(amountCents),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	ref, err := p.api.Refunds.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return &Refund{
		ID:          ref.ID,
		AmountCents: ref.Amount,
		Status:      string(ref.Status),
	}, nil
}

func customerFromStripe(cust *stripe.Customer) *Customer {
	c := &Customer{
		ID:    cust.ID,
		Email: cust.Email,
	}
	if cust.DefaultSource != nil {
		c.DefaultSource = cust.DefaultSource.ID
	}
	return c
}

func subscriptionFromStripe(sub *stripe.Subscription) *Subscription {
	return &Subscription{
		ID:               sub.ID,
		Status:           string(sub.Status),
		CurrentPeriodEnd: time.Unix(sub.CurrentPeriodEnd, 0),
		CancelAtEnd:      sub.CancelAtPeriodEnd,
	}
}

func cardFromStripe(card *stripe.Card, defaultSource string) *Card {
	return &Card{
		ID:        card.ID,
		Name:      card.Name,
		Brand:     string(card.Brand),
		Last4:     card.Last4,
		ExpMonth:  card.ExpMonth,
		ExpYear:   card.ExpYear,
		IsDefault: defaultSource != "" && card.ID == defaultSource,
	}
}

func invoiceFromStripe(inv *stripe.Invoice) *Invoice {
	out := &Invoice{
		Number: inv.Number,
		Date:   time.Unix(inv.Created, 0),
		Total:  inv.Total,
	}
	if inv.NextPaymentAttempt != 0 {
		out.NextPaymentAttempt = time.Unix(inv.NextPaymentAttempt, 0)
	}
	if inv.Charge != nil {
		out.ChargeID = inv.Charge.ID
	}
	if inv.Lines != nil {
		for _, line := range inv.Lines.Data {
			out.Lines = append(out.Lines, InvoiceLine{Description: line.Description})
		}
	}
	return out
}

func wrapStripeError(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		return &Error{
			Code:    string(serr.Code),
			Message: serr.Msg,
		}
	}
	return &Error{Message: err.Error()}
}
