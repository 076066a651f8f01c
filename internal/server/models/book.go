package models

// Book is a row of the books table.
type Book struct {
	ID              int64   `json:"id"`
	ISBN13          int64   `json:"isbn13"`
	Authors         string  `json:"authors"`
	PublicationYear int     `json:"publication_year"`
	OriginalTitle   string  `json:"original_title"`
	Title           string  `json:"title"`
	RatingAvg       float64 `json:"rating_avg"`
	RatingCount     int     `json:"rating_count"`
	Rating1Star     int     `json:"rating_1_star"`
	Rating2Star     int     `json:"rating_2_star"`
	Rating3Star     int     `json:"rating_3_star"`
	Rating4Star     int     `json:"rating_4_star"`
	Rating5Star     int     `json:"rating_5_star"`
	ImageURL        string  `json:"image_url"`
	ImageSmallURL   string  `json:"image_small_url"`
}

// Ratings holds the five star counts.
type Ratings [5]int

// Ratings returns the star counts, one star first.
func (b *Book) Ratings() Ratings {
	return Ratings{b.Rating1Star, b.Rating2Star, b.Rating3Star, b.Rating4Star, b.Rating5Star}
}

// SetRatings stores r and recomputes RatingCount and RatingAvg (rounded to
// two decimals; zero when there are no ratings).
func (b *Book) SetRatings(r Ratings) {
	b.Rating1Star, b.Rating2Star, b.Rating3Star, b.Rating4Star, b.Rating5Star = r[0], r[1], r[2], r[3], r[4]

	total, weighted := 0, 0
	for i, n := range r {
		total += n
		weighted += (i + 1) * n
	}
	b.RatingCount = total
	if total == 0 {
		b.RatingAvg = 0
		return
	}
	avg := float64(weighted) / float64(total)
	b.RatingAvg = float64(int(avg*100+0.5)) / 100
}
