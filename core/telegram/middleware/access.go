package middleware

import (
	"github.com/samber/lo"
	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminIDs []int64
	OnReject tele.HandlerFunc
}

func (o AdminOptions) allowed(id int64) bool {
	return lo.Contains(o.AdminIDs, id)
}

// AdminOnlyMiddleware ensures that only configured support admins can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || !opts.allowed(sender.ID) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}

// AdminOnly wraps a single handler enforcing admin-only execution.
func AdminOnly(opts AdminOptions, h tele.HandlerFunc) tele.HandlerFunc {
	return AdminOnlyMiddleware(opts)(h)
}
