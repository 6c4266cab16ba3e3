package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Lixing-Zhang/broffee-bot/internal/models"
	"github.com/Lixing-Zhang/broffee-bot/internal/service"
)

// User-facing error replies
const (
	MsgInvalidOrder     = "Please provide both the item and quantity to order."
	MsgInvalidDetails   = "Please provide your name and delivery destination separated by a comma."
	MsgParseQuantity    = "Please enter the quantity as a whole number, e.g. /order espresso 2."
	MsgUnknownItem      = "Sorry, that item is not available in our menu."
	MsgInvalidQuantity  = "Please enter a valid quantity greater than zero."
	MsgQuantityTooLarge = "Sorry, that's more than we can prepare of one item. Please order a smaller quantity."
	MsgUnknownCommand   = "Sorry, I don't know that command. Send /start to see what I can do."
	MsgInternal         = "Sorry, something went wrong on our side. Please try again."
)

// Dispatcher routes chat commands to the order service and turns results into replies
type Dispatcher struct {
	orders *service.OrderService
	log    *slog.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(orders *service.OrderService, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		orders: orders,
		log:    log,
	}
}

// Handle answers one command. It never fails: errors and panics become replies
// so a bad command cannot stop the transport from serving the next one.
func (d *Dispatcher) Handle(ctx context.Context, cmd models.Command) (reply models.Reply) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("command panicked",
				"session_id", cmd.SessionID,
				"command", cmd.Name,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			reply = models.Reply{Text: MsgInternal, Code: models.CodeInternal}
		}

		d.log.Info("command handled",
			"session_id", cmd.SessionID,
			"command", cmd.Name,
			"code", reply.Code,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	text, err := d.route(ctx, cmd)
	if err != nil {
		return d.describe(cmd, err)
	}
	return models.Reply{Text: text}
}

func (d *Dispatcher) route(ctx context.Context, cmd models.Command) (string, error) {
	if !cmd.IsCommand() {
		return d.orders.Fallback(), nil
	}

	switch cmd.Name {
	case "start":
		return d.orders.Greet(ctx)
	case "menu":
		return d.orders.ListMenu(ctx)
	case "order":
		return d.orders.PlaceOrder(ctx, cmd.SessionID, cmd.Args)
	case "cart":
		return d.orders.ShowCart(ctx, cmd.SessionID)
	case "dinein":
		return d.orders.DineIn(), nil
	case "takeout":
		return d.orders.Takeout(), nil
	case "delivery":
		return d.orders.Delivery(), nil
	case "details":
		return d.orders.DeliveryDetails(cmd.Args)
	case "end":
		return d.orders.EndSession(ctx, cmd.SessionID)
	default:
		return "", fmt.Errorf("%w: %s", service.ErrUnknownCommand, cmd.Name)
	}
}

// describe maps a service error to the reply the user sees
func (d *Dispatcher) describe(cmd models.Command, err error) models.Reply {
	switch {
	case errors.Is(err, service.ErrInvalidDetails):
		return models.Reply{Text: MsgInvalidDetails, Code: models.CodeInvalidArguments}
	case errors.Is(err, service.ErrInvalidArguments):
		return models.Reply{Text: MsgInvalidOrder, Code: models.CodeInvalidArguments}
	case errors.Is(err, service.ErrParse):
		return models.Reply{Text: MsgParseQuantity, Code: models.CodeParseError}
	case errors.Is(err, service.ErrUnknownItem):
		return models.Reply{Text: MsgUnknownItem, Code: models.CodeUnknownItem}
	case errors.Is(err, service.ErrQuantityTooLarge):
		return models.Reply{Text: MsgQuantityTooLarge, Code: models.CodeInvalidQuantity}
	case errors.Is(err, service.ErrInvalidQuantity):
		return models.Reply{Text: MsgInvalidQuantity, Code: models.CodeInvalidQuantity}
	case errors.Is(err, service.ErrUnknownCommand):
		return models.Reply{Text: MsgUnknownCommand, Code: models.CodeUnknownCommand}
	default:
		d.log.Error("command failed",
			"session_id", cmd.SessionID,
			"command", cmd.Name,
			"error", err,
		)
		return models.Reply{Text: MsgInternal, Code: models.CodeInternal}
	}
}

// ParseText turns a raw chat line into a Command.
// "/order@BroffeeBot Latte 2" becomes name "order" with args ["Latte", "2"];
// anything not starting with a slash is plain text.
func ParseText(sessionID, text string) models.Command {
	text = strings.TrimSpace(text)
	cmd := models.Command{SessionID: sessionID, Text: text}

	if !strings.HasPrefix(text, "/") {
		return cmd
	}

	fields := strings.Fields(text)
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return cmd
	}

	cmd.Name = strings.ToLower(name)
	cmd.Args = fields[1:]
	return cmd
}
