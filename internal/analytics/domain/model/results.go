package model

// CategoryRating is one row of the average-rating-per-category aggregation.
type CategoryRating struct {
	Category      string  `bson:"category" json:"category"`
	AvgRating     float64 `bson:"avg_rating" json:"avg_rating"`
	NumBusinesses int     `bson:"num_businesses" json:"num_businesses"`
}

// RatingReviewPair is one rating/review-count observation, used for
// correlation plots.
type RatingReviewPair struct {
	Rating      float64 `bson:"rating" json:"rating"`
	ReviewCount int     `bson:"review_count" json:"review_count"`
}

// PriceTierBucket summarizes businesses that share a price tier. Businesses
// without a price tier never appear in any bucket.
type PriceTierBucket struct {
	Price     string  `bson:"price" json:"price"`
	Count     int     `bson:"count" json:"count"`
	AvgRating float64 `bson:"avg_rating" json:"avg_rating"`
}

// RatingByPrice is one individual rating with its price tier, used for
// distribution plots.
type RatingByPrice struct {
	Rating float64 `bson:"rating" json:"rating"`
	Price  string  `bson:"price" json:"price"`
}
