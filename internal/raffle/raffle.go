package raffle

// Raffle is one giveaway as it appears in the public listing.
type Raffle struct {
	ID      string `json:"id"`
	Entered bool   `json:"entered"`
}

// Stats summarizes the account's standing shown on the listing page.
type Stats struct {
	Entered int `json:"entered"`
	Total   int `json:"total"`
}

// Unentered filters a listing to the IDs the account has not yet entered.
// Listings arrive newest first; the result is oldest first so that raffles
// closest to ending are entered before they close.
func Unentered(raffles []Raffle) []string {
	ids := make([]string, 0, len(raffles))
	for i := len(raffles) - 1; i >= 0; i-- {
		if !raffles[i].Entered {
			ids = append(ids, raffles[i].ID)
		}
	}
	return ids
}
