package types

// CheckoutMode mirrors the payment provider's checkout session modes.
type CheckoutMode string

const (
	CheckoutModePayment      CheckoutMode = "payment"
	CheckoutModeSubscription CheckoutMode = "subscription"
)

// Tier is the service level a customer holds after purchasing a
// subscription offering.
type Tier string

const (
	TierLite    Tier = "lite"
	TierGrowth  Tier = "growth"
	TierPartner Tier = "partner"
)

// Offering is a purchasable package defined in configuration. PriceID is the
// provider-side price identifier, so environment-specific IDs never require
// code changes.
type Offering struct {
	ID              string       `json:"id" mapstructure:"id"`
	Name            string       `json:"name" mapstructure:"name"`
	PriceID         string       `json:"price_id" mapstructure:"price_id"`
	PackageType     string       `json:"package_type" mapstructure:"package_type"`
	Tier            Tier         `json:"tier,omitempty" mapstructure:"tier"`
	Mode            CheckoutMode `json:"mode" mapstructure:"mode"`
	Amount          int64        `json:"amount" mapstructure:"amount"`
	Currency        string       `json:"currency" mapstructure:"currency"`
	HasDeliverables bool         `json:"has_deliverables" mapstructure:"has_deliverables"`
}

func (o *Offering) IsSubscription() bool {
	return o.Mode == CheckoutModeSubscription
}
