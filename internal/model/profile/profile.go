package profile

// Profile describes the portfolio owner the chat speaks for.
type Profile struct {
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Skills     []string `json:"skills"`
	Experience []string `json:"experience"`
	Projects   []string `json:"projects"`
	Education  string   `json:"education"`
	Interests  []string `json:"interests"`

	HelloGreeting string `json:"-"`
	HiGreeting    string `json:"-"`
	DefaultIntro  string `json:"-"`
	DeclineReply  string `json:"-"`
}

// Seed returns the built-in owner profile.
func Seed() Profile {
	return Profile{
		Name: "Truong Duc Hoa",
		Role: "Product Owner & Associate PM",
		Skills: []string{
			"Product Management", "Agile", "Web3", "AI/ML", "Blockchain",
			"User Research", "Data Analysis", "Stakeholder Management",
		},
		Experience: []string{
			"5+ years in tech industry",
			"Built 4 Web3 products in 6 months",
			"Developed 8 AI agents in 3 months",
			"End-to-end product operations",
		},
		Projects: []string{
			"Web3 products and NFT platforms",
			"AI agents for various use cases",
			"Product management and agile processes",
		},
		Education: "Tech industry experience",
		Interests: []string{"Product thinking", "Tech execution", "AI/ML", "Web3"},

		HelloGreeting: "Hi! I'm Truong Duc Hoa, a Product Owner & Associate PM. How can I help you learn more about my work?",
		HiGreeting:    "Hello! I'm Truong Duc Hoa, a Product Owner & Associate PM. What would you like to know about my experience?",
		DefaultIntro:  "I'm Truong Duc Hoa, a Product Owner & Associate PM with over 5 years of experience in the tech industry. I'm known for my ability to learn fast and adapt to emerging technologies. What specific aspect of my work would you like to know more about?",
		DeclineReply:  "I don't have specific information about that, but I'd be happy to tell you about my background, projects, or career goals. What would you like to know?",
	}
}
