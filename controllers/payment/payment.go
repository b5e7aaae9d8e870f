package paymentController

import (
	"coursemaster/middleware"
	"coursemaster/payment"
	"coursemaster/services"
	"coursemaster/utils"
	paymentValidator "coursemaster/validators/payment"

	"github.com/gofiber/fiber/v2"
)

type PaymentController struct {
	payments *services.PaymentService
	users    *services.UserService
}

func NewPaymentController(payments *services.PaymentService, users *services.UserService) *PaymentController {
	return &PaymentController{payments: payments, users: users}
}

func (ctl *PaymentController) CreateSession(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	reqData := c.Locals("validatedSession").(*paymentValidator.SessionRequest)

	user, err := ctl.users.Active(c.UserContext(), userID)
	if err != nil {
		return err
	}
	session, err := ctl.payments.CreateSession(c.UserContext(), user, reqData.CourseID)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment session created.", session)
}

func (ctl *PaymentController) Validate(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	reqData := c.Locals("validatedPaymentValidate").(*paymentValidator.ValidateRequest)

	outcome, err := ctl.payments.Validate(c.UserContext(), userID, reqData.TransactionID, reqData.Params)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment "+string(outcome.Status)+".", outcome)
}

// Webhook is called by the gateway. The provider verifies the payload.
func (ctl *PaymentController) Webhook(c *fiber.Ctx) error {
	body := make([]byte, len(c.Body()))
	copy(body, c.Body())

	outcome, err := ctl.payments.HandleWebhook(c.UserContext(), payment.Webhook{
		ContentType: c.Get(fiber.HeaderContentType),
		Body:        body,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification received.", fiber.Map{"status": outcome.Status})
}

func (ctl *PaymentController) Orders(c *fiber.Ctx) error {
	userID, _ := middleware.Caller(c)
	p := utils.GetPagination(c, 10)
	orders, total, err := ctl.payments.ListOrders(c.UserContext(), userID, p)
	if err != nil {
		return err
	}
	return middleware.PaginatedResponse(c, "Orders fetched successfully.", orders, p.Meta(total))
}
