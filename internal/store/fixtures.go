package store

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// sampleTickers is the ticker universe used by generated fixtures.
var sampleTickers = []TickerRecord{
	{Ticker: "AAPL", CompanyName: "Apple Inc.", Sector: "Information Technology", SubIndustry: "Technology Hardware"},
	{Ticker: "MSFT", CompanyName: "Microsoft Corp.", Sector: "Information Technology", SubIndustry: "Systems Software"},
	{Ticker: "NVDA", CompanyName: "NVIDIA Corp.", Sector: "Information Technology", SubIndustry: "Semiconductors"},
	{Ticker: "INTC", CompanyName: "Intel Corp.", Sector: "Information Technology", SubIndustry: "Semiconductors"},
	{Ticker: "AMD", CompanyName: "Advanced Micro Devices", Sector: "Information Technology", SubIndustry: "Semiconductors"},
	{Ticker: "GOOG", CompanyName: "Alphabet Inc.", Sector: "Communication Services", SubIndustry: "Interactive Media"},
	{Ticker: "FB", CompanyName: "Meta Platforms", Sector: "Communication Services", SubIndustry: "Interactive Media"},
	{Ticker: "NFLX", CompanyName: "Netflix Inc.", Sector: "Communication Services", SubIndustry: "Movies & Entertainment"},
	{Ticker: "FOX", CompanyName: "Fox Corp.", Sector: "Communication Services", SubIndustry: "Broadcasting"},
	{Ticker: "AMZN", CompanyName: "Amazon.com Inc.", Sector: "Consumer Discretionary", SubIndustry: "Broadline Retail"},
	{Ticker: "TSLA", CompanyName: "Tesla Inc.", Sector: "Consumer Discretionary", SubIndustry: "Automobile Manufacturers"},
	{Ticker: "BABA", CompanyName: "Alibaba Group", Sector: "Consumer Discretionary", SubIndustry: "Broadline Retail"},
}

var sampleWords = []string{
	"market", "price", "buy", "sell", "earnings", "growth",
	"quarter", "guidance", "downgrade", "upgrade", "rumor", "ipo",
}

var sampleSentiments = []string{"Positive", "Negative", "Neutral"}

// GenerateFixtures builds n synthetic posts spread over the 30 days before
// now, each mentioning zero to three tickers. The same seed always yields
// the same data.
func GenerateFixtures(n int, seed uint64, now time.Time) *Fixtures {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	fx := &Fixtures{
		Posts:   make([]PostRecord, 0, n),
		Tickers: append([]TickerRecord(nil), sampleTickers...),
	}
	window := int64(30 * 24 * time.Hour / time.Millisecond)

	for i := 0; i < n; i++ {
		id := int64(i + 1)
		user := fmt.Sprintf("user_%d", rng.IntN(20)+1)
		postID := fmt.Sprintf("test_%010d", rng.Uint64()%1e10)
		rec := PostRecord{
			ID:           id,
			PostID:       postID,
			Username:     user,
			OriginalText: randomText(rng),
			SourceURL:    "https://x.com/" + user + "/status/" + strings.TrimPrefix(postID, "test_"),
			PostedAt:     now.UnixMilli() - rng.Int64N(window),
			LikeCount:    rng.Int64N(501),
			RetweetCount: rng.Int64N(301),
		}
		if rng.IntN(4) == 0 {
			rec.LinkSummary = "summary of linked article"
		}
		fx.Posts = append(fx.Posts, rec)

		picked := map[string]bool{}
		mentions := rng.IntN(4)
		for j := 0; j < mentions; j++ {
			t := sampleTickers[rng.IntN(len(sampleTickers))].Ticker
			if picked[t] {
				continue
			}
			picked[t] = true
			fx.Sentiments = append(fx.Sentiments, SentimentRecord{
				PostID:    id,
				Position:  int32(len(picked) - 1),
				Ticker:    t,
				Sentiment: sampleSentiments[rng.IntN(len(sampleSentiments))],
			})
		}
	}
	return fx
}

func randomText(rng *rand.Rand) string {
	k := 6 + rng.IntN(15)
	words := make([]string, k)
	for i := range words {
		words[i] = sampleWords[rng.IntN(len(sampleWords))]
	}
	return strings.Join(words, " ")
}
