package service

import (
	"github.com/hausmarkt/internal/config"
	"github.com/hausmarkt/internal/payment/stripe"
)

// StripeConfigFromApp 从应用配置构建 Stripe 渠道配置
func StripeConfigFromApp(cfg *config.Config) *stripe.Config {
	if cfg == nil {
		return &stripe.Config{}
	}
	stripeCfg := &stripe.Config{
		SecretKey:               cfg.Stripe.SecretKey,
		PublishableKey:          cfg.Stripe.PublishableKey,
		WebhookSecret:           cfg.Stripe.WebhookSecret,
		SuccessURL:              cfg.Stripe.SuccessURL,
		CancelURL:               cfg.Stripe.CancelURL,
		APIBaseURL:              cfg.Stripe.APIBaseURL,
		WebhookToleranceSeconds: cfg.Stripe.WebhookToleranceSeconds,
	}
	stripeCfg.Normalize()
	return stripeCfg
}
