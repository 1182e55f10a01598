package compose

import "progress-pulse/internal/types"

// hooks are indexed by time.Weekday, Sunday first.
var hooks = []string{
	"☀️ Sunday year check-in:",
	"🚀 Monday momentum check:",
	"⏳ Tuesday time check:",
	"🧭 Midweek compass reading:",
	"🔥 Thursday reality check:",
	"🎉 Friday progress report:",
	"🌿 Saturday calendar glance:",
}

var insights = []string{
	"Small steps every day add up to a big year.",
	"The calendar moves at one speed for all of us.",
	"Habits are built on ordinary days.",
	"A year is hundreds of small decisions.",
	"Visible progress is the best motivation.",
	"Done today beats perfect someday.",
	"Every day counted here was a fresh start.",
	"Consistency quietly beats intensity.",
	"What you repeat is what you become.",
	"Time spent learning is never wasted.",
	"Rest is part of the plan.",
}

var prompts = []string{
	"What will you do with the rest? 💪",
	"What will you finish before it ends?",
	"Which goal gets your next hour?",
	"What would make today count?",
	"Who will you help this week?",
	"What are you proud of so far?",
	"What can you drop to make room?",
	"Share one win from this week 👇",
}

var fallbackQuotes = []types.Snippet{
	{Kind: types.AsideQuote, Text: "The secret of getting ahead is getting started.", Attribution: "Mark Twain"},
	{Kind: types.AsideQuote, Text: "Well done is better than well said.", Attribution: "Benjamin Franklin"},
	{Kind: types.AsideQuote, Text: "It always seems impossible until it's done.", Attribution: "Nelson Mandela"},
	{Kind: types.AsideQuote, Text: "Lost time is never found again.", Attribution: "Benjamin Franklin"},
	{Kind: types.AsideQuote, Text: "The future depends on what you do today.", Attribution: "Mahatma Gandhi"},
	{Kind: types.AsideQuote, Text: "Action is the key to all success.", Attribution: "Pablo Picasso"},
	{Kind: types.AsideQuote, Text: "Time is what we want most, but use worst.", Attribution: "William Penn"},
}

var fallbackJokes = []types.Snippet{
	{Kind: types.AsideJoke, Text: "I told my calendar a joke. It said my days are numbered."},
	{Kind: types.AsideJoke, Text: "Why was the calendar popular? It had a lot of dates."},
	{Kind: types.AsideJoke, Text: "My resolution was to stop procrastinating. Next week."},
	{Kind: types.AsideJoke, Text: "Time flies like an arrow. Fruit flies like a banana."},
	{Kind: types.AsideJoke, Text: "I tried to catch some fog earlier. I mist."},
}

// hashtagSets always get the year and campaign tags prepended.
var hashtagSets = []string{
	"#Motivation",
	"#Goals",
	"#Productivity",
	"#Mindset",
	"#KeepGoing",
}
