package ideas

// Idea is a posted idea. Date is the ISO-8601 creation instant assigned by
// the server. Author is nil when the authoring user no longer exists.
type Idea struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	UserID      int64   `json:"userId"`
	Author      *string `json:"-"`
}
