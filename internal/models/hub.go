package models

// MusicTrack is an entry in the shared music library.
type MusicTrack struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Source   string `json:"source"`
	Duration int    `json:"duration"`
	Genre    string `json:"genre"`
	AddedAt  int64  `json:"addedAt"`
	AddedBy  string `json:"addedBy,omitempty"`
}

// ProfileStats is the counter block of a user profile.
type ProfileStats struct {
	WorldsCreated   int   `json:"worldsCreated"`
	WorldsPurchased int   `json:"worldsPurchased"`
	TradesCompleted int   `json:"tradesCompleted"`
	TotalEarned     int64 `json:"totalEarned"`
}

// UserProfile is the stored profile record for the session wallet.
type UserProfile struct {
	WalletAddress string       `json:"walletAddress"`
	DisplayName   string       `json:"displayName"`
	Bio           string       `json:"bio"`
	Avatar        string       `json:"avatar"`
	JoinedAt      int64        `json:"joinedAt"`
	Stats         ProfileStats `json:"stats"`
}

// TerminalCommand is one executed console command with its rendered output.
type TerminalCommand struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
}
