package intent

// Handler ids understood by the storefront
const (
	CartAdd        = "cart.add"
	CartRemove     = "cart.remove"
	CartView       = "cart.view"
	CartClear      = "cart.clear"
	WishlistAdd    = "wishlist.add"
	WishlistRemove = "wishlist.remove"
	WishlistView   = "wishlist.view"
	WishlistClear  = "wishlist.clear"
	AuthLogin      = "auth.login"
	AuthLogout     = "auth.logout"
	AuthRegister   = "auth.register"
	CheckoutStart  = "checkout.start"
	OrdersView     = "orders.view"
	OrdersTrack    = "orders.track"
)

// ActionPattern maps a set of trigger phrases to a UI handler
type ActionPattern struct {
	Handler       string   `json:"handler" yaml:"handler"`
	Phrases       []string `json:"phrases" yaml:"phrases"`
	Priority      int      `json:"priority" yaml:"priority"`
	RequiresItems bool     `json:"requiresItems" yaml:"requires_items"`
	Description   string   `json:"description" yaml:"description"`
}

// DefaultPatterns returns the built-in action table
func DefaultPatterns() []ActionPattern {
	return []ActionPattern{
		{
			Handler:       CartAdd,
			Priority:      100,
			RequiresItems: true,
			Description:   "Add the shown product to the cart",
			Phrases: []string{
				"add to cart", "add to my cart", "add to basket", "add it to cart", "add it to my cart",
				"add this to cart", "add this to my cart", "put in cart", "put in my cart",
				"put it in my cart", "buy this", "buy it", "purchase this", "i'll take it",
			},
		},
		{
			Handler:     CartRemove,
			Priority:    95,
			Description: "Remove a product from the cart",
			Phrases: []string{
				"remove from cart", "remove from my cart", "remove it from my cart", "remove this from cart",
				"delete from cart", "take out of cart", "take it out of my cart",
			},
		},
		{
			Handler:     CartClear,
			Priority:    95,
			Description: "Empty the cart",
			Phrases: []string{
				"clear cart", "clear my cart", "empty cart", "empty my cart",
				"remove everything from cart", "remove everything from my cart", "remove all from cart",
			},
		},
		{
			Handler:     CheckoutStart,
			Priority:    92,
			Description: "Start checkout",
			Phrases: []string{
				"proceed to checkout", "go to checkout", "checkout", "check out", "proceed to payment",
				"place order", "place my order", "pay now",
			},
		},
		{
			Handler:       WishlistAdd,
			Priority:      90,
			RequiresItems: true,
			Description:   "Save the shown product to the wishlist",
			Phrases: []string{
				"add to wishlist", "add to my wishlist", "add it to my wishlist", "add this to my wishlist",
				"save to wishlist", "save for later", "add to favorites", "add to favourites",
			},
		},
		{
			Handler:     WishlistRemove,
			Priority:    88,
			Description: "Remove a product from the wishlist",
			Phrases: []string{
				"remove from wishlist", "remove from my wishlist", "remove it from my wishlist",
				"delete from wishlist", "remove from favorites", "remove from favourites",
			},
		},
		{
			Handler:     WishlistClear,
			Priority:    88,
			Description: "Empty the wishlist",
			Phrases: []string{
				"clear wishlist", "clear my wishlist", "empty wishlist", "empty my wishlist",
				"remove everything from my wishlist",
			},
		},
		{
			Handler:     CartView,
			Priority:    85,
			Description: "Show the cart",
			Phrases: []string{
				"view cart", "view my cart", "show cart", "show my cart", "open cart", "open my cart",
				"see my cart", "what's in my cart", "whats in my cart", "go to cart",
			},
		},
		{
			Handler:     WishlistView,
			Priority:    80,
			Description: "Show the wishlist",
			Phrases: []string{
				"view wishlist", "view my wishlist", "show wishlist", "show my wishlist", "open wishlist",
				"open my wishlist", "see my wishlist", "what's in my wishlist",
			},
		},
		{
			Handler:     AuthLogin,
			Priority:    75,
			Description: "Sign the user in",
			Phrases:     []string{"log in", "login", "sign in", "signin", "log me in", "sign me in"},
		},
		{
			Handler:     AuthLogout,
			Priority:    75,
			Description: "Sign the user out",
			Phrases:     []string{"log out", "logout", "sign out", "signout", "log me out", "sign me out"},
		},
		{
			Handler:     AuthRegister,
			Priority:    75,
			Description: "Create an account",
			Phrases: []string{
				"create an account", "create account", "sign up", "signup", "register", "make an account",
			},
		},
		{
			Handler:     OrdersTrack,
			Priority:    72,
			Description: "Track an order",
			Phrases: []string{
				"track my order", "track order", "track my package", "where is my order",
				"where's my order", "order status", "delivery status",
			},
		},
		{
			Handler:     OrdersView,
			Priority:    70,
			Description: "List past orders",
			Phrases: []string{
				"my orders", "order history", "view orders", "view my orders", "show my orders",
				"past orders", "previous orders",
			},
		},
	}
}
