package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/broffee-bot/internal/models"
	"github.com/Lixing-Zhang/broffee-bot/internal/repository"
)

var (
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrUnknownItem      = errors.New("item is not on the menu")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrQuantityTooLarge = fmt.Errorf("%w: at most %d of one item per cart", ErrInvalidQuantity, repository.MaxLineQuantity)
	ErrParse            = errors.New("quantity is not a whole number")
	ErrInvalidDetails   = fmt.Errorf("%w: name and destination must be separated by a comma", ErrInvalidArguments)
	ErrUnknownCommand   = errors.New("unknown command")
)

// Fixed replies
const (
	DineInMessage   = "You've selected dine-in. Please find a seat and our staff will assist you shortly."
	TakeoutMessage  = "You've selected takeout. Your order will be prepared shortly for pickup."
	DeliveryMessage = "You've selected delivery. Please provide your name and delivery destination.\n" +
		"Example: /details John Doe, 123 Main Street"
	EndMessage = "Thank you for choosing our Coffee Shop! Your conversation has ended. " +
		"Feel free to start a new one anytime."
	FallbackMessage  = "I'm just a simple coffee shop bot. You can order coffee, tea, croissant, muffin, or ask me anything!"
	EmptyCartMessage = "Your cart is empty."
)

// greetingSample is how many menu items the welcome message shows
const greetingSample = 3

// CommandInfo describes one bot command for help text and client registration
type CommandInfo struct {
	Name        string
	Usage       string
	Description string
}

// Commands lists the commands advertised to users, in display order
var Commands = []CommandInfo{
	{Name: "menu", Description: "View menu items"},
	{Name: "order", Usage: "<item> <quantity>", Description: "Order items"},
	{Name: "cart", Description: "View your cart"},
	{Name: "dinein", Description: "Dine in"},
	{Name: "takeout", Description: "Takeout"},
	{Name: "delivery", Description: "Get delivery"},
	{Name: "details", Usage: "<name>, <destination>", Description: "Send delivery details"},
	{Name: "end", Description: "End the conversation and/or reset your cart"},
}

// OrderService runs the coffee shop conversation: menu, cart and fulfillment replies.
// Every cart operation is scoped to a session ID.
type OrderService struct {
	menu  repository.MenuRepository
	carts repository.CartStore
	log   *slog.Logger
}

// NewOrderService creates a new order service
func NewOrderService(menu repository.MenuRepository, carts repository.CartStore, log *slog.Logger) *OrderService {
	return &OrderService{
		menu:  menu,
		carts: carts,
		log:   log,
	}
}

// Greet returns the welcome message with a sample of the menu and the command list
func (s *OrderService) Greet(ctx context.Context) (string, error) {
	items, err := s.menu.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load menu: %w", err)
	}
	if len(items) > greetingSample {
		items = items[:greetingSample]
	}

	var b strings.Builder
	b.WriteString("Welcome to our Broffee Shop! Here's our menu:\n\n")
	writeMenuLines(&b, items)
	b.WriteString("And much more!\n\n")
	for i, c := range Commands {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("/" + c.Name)
		if c.Usage != "" {
			b.WriteString(" " + c.Usage)
		}
		b.WriteString(" - " + c.Description)
	}

	return b.String(), nil
}

// ListMenu returns the full menu as a numbered list in definition order
func (s *OrderService) ListMenu(ctx context.Context) (string, error) {
	items, err := s.menu.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load menu: %w", err)
	}

	var b strings.Builder
	b.WriteString("Here's our menu:\n\n")
	writeMenuLines(&b, items)

	return strings.TrimRight(b.String(), "\n"), nil
}

// PlaceOrder parses "<item> <quantity>" and adds it to the session's cart
func (s *OrderService) PlaceOrder(ctx context.Context, sessionID string, args []string) (string, error) {
	tokens := strings.Fields(strings.ToLower(strings.Join(args, " ")))
	if len(tokens) < 2 {
		return "", ErrInvalidArguments
	}

	item := tokens[0]
	// out-of-range integers are still whole numbers; Atoi clamps them and the
	// limit check below rejects them
	quantity, err := strconv.Atoi(tokens[1])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return "", fmt.Errorf("%w: %w", ErrParse, err)
	}

	if _, err := s.menu.GetByName(ctx, item); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return "", ErrUnknownItem
		}
		return "", fmt.Errorf("failed to look up %s: %w", item, err)
	}

	if quantity <= 0 {
		return "", ErrInvalidQuantity
	}
	if quantity > repository.MaxLineQuantity {
		return "", ErrQuantityTooLarge
	}

	total, err := s.carts.Add(ctx, sessionID, item, quantity)
	if errors.Is(err, repository.ErrInvalidQuantity) {
		return "", ErrQuantityTooLarge
	}
	if err != nil {
		return "", fmt.Errorf("failed to add to cart: %w", err)
	}

	s.log.Debug("item added to cart",
		"session_id", sessionID,
		"item", item,
		"quantity", quantity,
		"cart_quantity", total,
	)

	return fmt.Sprintf("%d %s(s) added to your cart!", quantity, item), nil
}

// Cart prices the session's cart against the menu
func (s *OrderService) Cart(ctx context.Context, sessionID string) (*models.CartSummary, error) {
	lines, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	summary := &models.CartSummary{
		SessionID: sessionID,
		Lines:     make([]models.CartSummaryLine, 0, len(lines)),
	}

	for _, line := range lines {
		item, err := s.menu.GetByName(ctx, line.Item)
		if err != nil {
			// only possible when a shared store outlives a menu change
			s.log.Warn("cart item missing from menu", "session_id", sessionID, "item", line.Item)
			continue
		}

		cost := item.Price * float64(line.Quantity)
		summary.Total += cost
		summary.Lines = append(summary.Lines, models.CartSummaryLine{
			Item:      line.Item,
			Quantity:  line.Quantity,
			UnitPrice: item.Price,
			Cost:      cost,
		})
	}

	return summary, nil
}

// ShowCart renders the session's cart with line costs and a total
func (s *OrderService) ShowCart(ctx context.Context, sessionID string) (string, error) {
	summary, err := s.Cart(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if summary.IsEmpty() {
		return EmptyCartMessage, nil
	}

	var b strings.Builder
	b.WriteString("Your cart contains:\n")
	for _, line := range summary.Lines {
		fmt.Fprintf(&b, "%s - %d - $%.2f\n", capitalize(line.Item), line.Quantity, line.Cost)
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f", summary.Total)

	return b.String(), nil
}

// DineIn acknowledges a dine-in order
func (s *OrderService) DineIn() string {
	return DineInMessage
}

// Takeout acknowledges a takeout order
func (s *OrderService) Takeout() string {
	return TakeoutMessage
}

// Delivery asks for the delivery details
func (s *OrderService) Delivery() string {
	return DeliveryMessage
}

// DeliveryDetails echoes "<name>, <destination>" back to the user.
// Only the first comma separates the two; nothing is stored.
func (s *OrderService) DeliveryDetails(args []string) (string, error) {
	input := strings.Join(args, " ")

	name, destination, found := strings.Cut(input, ",")
	if !found {
		return "", ErrInvalidDetails
	}

	return fmt.Sprintf("Thank you, %s! Your order will be delivered to %s shortly.",
		strings.TrimSpace(name), strings.TrimSpace(destination)), nil
}

// EndSession clears the session's cart and says goodbye
func (s *OrderService) EndSession(ctx context.Context, sessionID string) (string, error) {
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		return "", fmt.Errorf("failed to clear cart: %w", err)
	}

	s.log.Debug("session ended", "session_id", sessionID)
	return EndMessage, nil
}

// Fallback answers any text that is not a command
func (s *OrderService) Fallback() string {
	return FallbackMessage
}

func writeMenuLines(b *strings.Builder, items []models.MenuItem) {
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s - $%s\n", i+1, capitalize(item.Name), formatPrice(item.Price))
	}
}

// formatPrice keeps at least one decimal: 2 -> "2.0", 2.5 -> "2.5"
func formatPrice(price float64) string {
	s := strconv.FormatFloat(price, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
