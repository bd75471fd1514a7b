package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"

	"github.com/noah-isme/kasku-go-api/internal/service"
)

const auditDispatchTimeout = 5 * time.Second

// Audited wraps a handler so that its outcome is recorded on the audit
// trail after the response is produced. Success is derived from the
// response status; the request payload becomes the entry context.
// Anonymous requests are never audited.
func Audited(recorder service.AuditRecorder, action, resource string, handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := requestPayload(c)

		err := handler(c)

		user, ok := CurrentUser(c)
		if !ok {
			return err
		}

		status := c.Response().StatusCode()
		success := status >= fiber.StatusOK && status < fiber.StatusMultipleChoices

		// Strings read off the fiber context are views into recycled request
		// buffers. The entry outlives the request, so every one of them must
		// be copied before the dispatch goroutine runs.
		entry := service.AuditEntry{
			UserID:    user.ID,
			Action:    action,
			Resource:  resource,
			Context:   payload,
			IPAddress: fiberutils.CopyString(c.IP()),
			UserAgent: fiberutils.CopyString(c.Get("User-Agent")),
			Success:   success,
		}
		if id := c.Params("id"); id != "" {
			owned := fiberutils.CopyString(id)
			entry.ResourceID = &owned
		}
		if !success {
			entry.ErrorMessage = failureMessage(c.Response().Body())
		}

		correlationID := GetCorrelationID(c)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), auditDispatchTimeout)
			defer cancel()
			_ = recorder.Record(ContextWithCorrelation(ctx, correlationID), entry)
		}()

		return err
	}
}

func requestPayload(c *fiber.Ctx) map[string]interface{} {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	return payload
}

func failureMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Message == "" {
		return "unknown error"
	}
	return envelope.Message
}
