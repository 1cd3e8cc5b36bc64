package main

import "github.com/Zachkp/folio/internal/server"

var site = server.Site{
	Title:   "Portfolio | Data Analyst",
	Name:    "Portfolio",
	Tagline: "Data analyst turning raw numbers into decisions.",
	About: `I work with SQL, Python and spreadsheets to clean, explore and explain data.
	Most of my projects start with a messy dataset and a simple question, and end with a dashboard
	or a short report that someone can act on.`,
}
