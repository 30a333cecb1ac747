package domain

// User is a durable registry entry. It lives for the process lifetime and is
// never deleted; only the coin balance and friend set change after creation.
type User struct {
	Id      string   `json:"userId"`
	Name    string   `json:"name"`
	Coins   int      `json:"coins"`
	Friends []string `json:"friends"`
}

// StartingCoins is granted to every user on first sight.
const StartingCoins = 100
