// Package scoring turns raw mention text into a 0-100 risk score and a
// three-way sentiment label using static keyword lexicons. Matching is
// substring-based on whitespace tokens, so short entries like "bad" also
// match inside longer words; the lexicons are tuned with that in mind.
package scoring

import (
	"math"
	"strings"

	"github.com/repradar/repradar/internal/models"
)

// riskKeywords flag reputation-damaging language. This list is broader than
// the sentiment lexicon because risk cares about legal/fraud vocabulary that
// is neither positive nor negative small talk.
var riskKeywords = []string{
	"scam", "fraud", "ripoff", "rip-off", "lawsuit", "sue",
	"terrible", "awful", "horrible", "worst", "avoid",
	"warning", "fake", "liar", "dishonest", "stole", "stolen",
	"refund", "complaint", "shady", "cheat", "spam", "banned",
}

var positiveKeywords = []string{
	"great", "good", "love", "excellent", "amazing", "awesome",
	"fantastic", "helpful", "recommend", "best", "happy", "solid",
}

// sentimentNegativeKeywords is deliberately smaller than riskKeywords:
// sentiment compares everyday praise against everyday complaints, while the
// risk score sweeps a wider net.
var sentimentNegativeKeywords = []string{
	"bad", "terrible", "awful", "hate", "worst", "scam", "avoid", "broken",
}

// RiskScore maps a set of texts to an integer in [0,100]. The score is the
// density of risk-keyword-bearing tokens, scaled by 10 and clamped. Empty
// input or input with no words scores 0.
func RiskScore(texts []string) int {
	totalWords := 0
	negative := 0

	for _, text := range texts {
		for _, word := range strings.Fields(strings.ToLower(text)) {
			totalWords++
			if containsAny(word, riskKeywords) {
				negative++
			}
		}
	}

	if totalWords == 0 {
		return 0
	}

	score := int(math.Round(float64(negative) / float64(totalWords) * 100 * 10))
	if score > 100 {
		score = 100
	}
	return score
}

// Sentiment classifies a set of texts as positive, negative, or neutral. A
// label wins only when its keyword count exceeds 1.5x the opposing count;
// everything else, including empty input, is neutral.
func Sentiment(texts []string) models.Sentiment {
	positive := 0
	negative := 0

	for _, text := range texts {
		for _, word := range strings.Fields(strings.ToLower(text)) {
			if containsAny(word, positiveKeywords) {
				positive++
			}
			if containsAny(word, sentimentNegativeKeywords) {
				negative++
			}
		}
	}

	switch {
	case float64(positive) > 1.5*float64(negative):
		return models.SentimentPositive
	case float64(negative) > 1.5*float64(positive):
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func containsAny(word string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(word, kw) {
			return true
		}
	}
	return false
}
