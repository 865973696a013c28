package models

// SubscriptionSettings is the body of subscription create/update requests.
type SubscriptionSettings struct {
	EmailPush  *bool   `json:"email_push"  form:"email_push"`
	WebhookURL *string `json:"webhook_url" form:"webhook_url" binding:"omitempty,url"`
	PeriodPush *int    `json:"period_push" form:"period_push" binding:"omitempty,min=1,max=720"`
}

type RegisterData struct {
	Username string `json:"username" form:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email"    form:"email"    binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8"`
}

type LoginData struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}
