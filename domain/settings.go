package domain

// Watch-together display sizes.
const (
	WatchSmall  = "small"
	WatchMedium = "medium"
	WatchLarge  = "large"
)

// WatchSession describes the shared video playback state. Clients seek to
// floor((now-StartedAt)/1000) seconds; drift is not compensated.
type WatchSession struct {
	VideoID   string `json:"videoId"`
	StartedAt int64  `json:"startedAt"` // unix ms
	Size      string `json:"size"`
	StartedBy string `json:"startedBy"`
}

// SystemSettings is the process-wide singleton, mutated only by the owner
// and broadcast to every connected session on change, authenticated or not.
type SystemSettings struct {
	SiteLogo         string          `json:"siteLogo"`
	SiteTitle        string          `json:"siteTitle"`
	BackgroundColor  string          `json:"backgroundColor"`
	LoginMusic       string          `json:"loginMusic"`
	ChatMusic        string          `json:"chatMusic"`
	LoginMusicVolume float64         `json:"loginMusicVolume"`
	ChatMusicVolume  float64         `json:"chatMusicVolume"`
	PartyMode        map[string]bool `json:"partyMode"`
	YouTube          *WatchSession   `json:"youtube"`
}

// DefaultSettings returns the bootstrap settings used on first run.
func DefaultSettings() SystemSettings {
	return SystemSettings{
		SiteTitle:        "Cold Room",
		BackgroundColor:  "blue",
		LoginMusicVolume: 0.5,
		ChatMusicVolume:  0.5,
		PartyMode:        map[string]bool{},
	}
}
