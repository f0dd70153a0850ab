package dto

import "time"

type AnalyzeRequest struct {
	EmailText string `json:"email_text"`
}

func (r AnalyzeRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.EmailText == "" {
		errors["email_text"] = "Email text is required"
	}

	return errors
}

type AnalysisResponse struct {
	Sentiment  *string   `json:"sentiment"`
	Tone       *string   `json:"tone"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

type AnalysisHistoryItem struct {
	ID         string    `json:"id"`
	EmailText  string    `json:"email_text"`
	Sentiment  *string   `json:"sentiment"`
	Tone       *string   `json:"tone"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

type SubscriptionStatusResponse struct {
	IsPremium          bool   `json:"is_premium"`
	SubscriptionStatus string `json:"subscription_status"`
	APIUsageCount      int    `json:"api_usage_count"`
	APIUsageLimit      int    `json:"api_usage_limit"`
}

type CheckoutResponse struct {
	CheckoutURL   string `json:"checkout_url"`
	CustomerEmail string `json:"customer_email"`
	UserID        string `json:"user_id"`
}

type PricingPlan struct {
	Name     string      `json:"name"`
	Price    float64     `json:"price"`
	APICalls interface{} `json:"api_calls"`
	Features []string    `json:"features"`
}

type PricingResponse struct {
	Plans []PricingPlan `json:"plans"`
}
