package paymentRoutes

import (
	paymentController "coursemaster/controllers/payment"
	paymentValidator "coursemaster/validators/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupPaymentRoutes registers checkout and the gateway webhook.
// The webhook is public; the provider authenticates the payload.
func SetupPaymentRoutes(api fiber.Router, jwt fiber.Handler, ctl *paymentController.PaymentController) {
	paymentGroup := api.Group("/payments")

	paymentGroup.Post("/create-session", jwt, paymentValidator.CreateSession(), ctl.CreateSession)
	paymentGroup.Post("/intent", jwt, paymentValidator.CreateSession(), ctl.CreateSession)
	paymentGroup.Get("/validate", jwt, paymentValidator.Validate(), ctl.Validate)
	paymentGroup.Post("/webhook", ctl.Webhook)
	paymentGroup.Get("/orders", jwt, ctl.Orders)
}
