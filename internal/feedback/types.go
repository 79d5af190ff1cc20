package feedback

import "time"

// Sentiment is the fine-grained sentiment of a piece of feedback.
type Sentiment string

const (
	SentimentVeryNegative Sentiment = "Very Negative"
	SentimentNegative     Sentiment = "Negative"
	SentimentNeutral      Sentiment = "Neutral"
	SentimentPositive     Sentiment = "Positive"
	SentimentVeryPositive Sentiment = "Very Positive"
)

// Sentiments lists the closed set from most negative to most positive.
var Sentiments = []Sentiment{
	SentimentVeryNegative,
	SentimentNegative,
	SentimentNeutral,
	SentimentPositive,
	SentimentVeryPositive,
}

// Rank returns the position of s in Sentiments, or len(Sentiments) for values
// outside the closed set so they sort last.
func (s Sentiment) Rank() int {
	for i, v := range Sentiments {
		if v == s {
			return i
		}
	}
	return len(Sentiments)
}

// Urgency is how quickly the business should act on a piece of feedback.
type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

var Urgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh}

// Category is the business area a piece of feedback is about.
type Category string

const (
	CategoryFoodQuality     Category = "Food Quality"
	CategoryDelivery        Category = "Delivery"
	CategoryCustomerService Category = "Customer Service"
	CategoryPricing         Category = "Pricing"
	CategoryCleanliness     Category = "Cleanliness"
	CategoryTakeAway        Category = "Take away"
	CategoryWaitingTime     Category = "Waiting Time"
	CategoryOther           Category = "Other"
)

var Categories = []Category{
	CategoryFoodQuality,
	CategoryDelivery,
	CategoryCustomerService,
	CategoryPricing,
	CategoryCleanliness,
	CategoryTakeAway,
	CategoryWaitingTime,
	CategoryOther,
}

// Attributes is the structured reading of one piece of feedback.
type Attributes struct {
	Sentiment Sentiment `json:"sentiment"`
	Urgency   Urgency   `json:"urgency"`
	Emotion   string    `json:"emotion"`
	Category  Category  `json:"category"`
}

// IsUrgent reports whether the feedback needs immediate attention.
func (a Attributes) IsUrgent() bool {
	return a.Urgency == UrgencyHigh || a.Sentiment == SentimentVeryNegative
}

// Record is one processed feedback transaction as stored in the log.
// Records are identified by their position in the log.
type Record struct {
	Timestamp  time.Time  `json:"timestamp"`
	Feedback   string     `json:"feedback"`
	Attributes Attributes `json:"attributes"`
	Reply      string     `json:"reply"`
}
