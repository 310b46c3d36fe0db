package types

// HomepageConfig is the homepage layout document edited by the admin portal
type HomepageConfig struct {
	Hero     HeroSection     `json:"hero"`
	Featured FeaturedSection `json:"featured"`
	Recent   RecentSection   `json:"recent"`
	Layout   LayoutSection   `json:"layout"`
}

// HeroSection is the banner at the top of the homepage
type HeroSection struct {
	Title    string `json:"title" validate:"max=200"`
	Subtitle string `json:"subtitle,omitempty" validate:"max=500"`
	Image    string `json:"image,omitempty"`
	CTAText  string `json:"ctaText,omitempty"`
	CTALink  string `json:"ctaLink,omitempty"`
}

// FeaturedSection lists hand-picked posts
type FeaturedSection struct {
	Enabled  bool     `json:"enabled"`
	Title    string   `json:"title,omitempty"`
	Posts    []string `json:"posts,omitempty" validate:"dive,slug"`
	MaxPosts int      `json:"maxPosts" validate:"gte=0,lte=50"`
}

// RecentSection lists the newest posts
type RecentSection struct {
	Enabled bool   `json:"enabled"`
	Title   string `json:"title,omitempty"`
	Count   int    `json:"count" validate:"gte=0,lte=100"`
}

// LayoutSection controls page chrome
type LayoutSection struct {
	Theme   string `json:"theme,omitempty"`
	Sidebar bool   `json:"sidebar"`
	Columns int    `json:"columns" validate:"gte=1,lte=4"`
}

// DefaultHomepageConfig returns the document served when nothing was saved yet
func DefaultHomepageConfig() HomepageConfig {
	return HomepageConfig{
		Hero: HeroSection{
			Title:    "Welcome to my blog",
			Subtitle: "Notes on software, writing and everything in between",
			CTAText:  "Read the latest posts",
			CTALink:  "/blog",
		},
		Featured: FeaturedSection{
			Enabled:  true,
			Title:    "Featured posts",
			MaxPosts: 3,
		},
		Recent: RecentSection{
			Enabled: true,
			Title:   "Recent posts",
			Count:   6,
		},
		Layout: LayoutSection{
			Theme:   "default",
			Sidebar: false,
			Columns: 3,
		},
	}
}

// SiteSettings holds site-wide metadata
type SiteSettings struct {
	Title        string            `json:"title" validate:"required,max=200"`
	Description  string            `json:"description,omitempty" validate:"max=1000"`
	Author       string            `json:"author,omitempty"`
	URL          string            `json:"url,omitempty" validate:"omitempty,url"`
	PostsPerPage int               `json:"postsPerPage" validate:"gte=1,lte=100"`
	Social       map[string]string `json:"social,omitempty"`
}

// DefaultSiteSettings returns the settings served when nothing was saved yet
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		Title:        "My Blog",
		Description:  "A statically exported blog",
		PostsPerPage: 10,
	}
}
