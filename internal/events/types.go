package events

import "github.com/MRamiBalles/DevLearnAcademy/internal/domain/achievement"

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeTick                 EventType = "TICK"
	EventTypeStateChanged         EventType = "STATE_CHANGED"
	EventTypeEnergyLow            EventType = "ENERGY_LOW"
	EventTypeStressHigh           EventType = "STRESS_HIGH"
	EventTypeXPGained             EventType = "XP_GAINED"
	EventTypeLevelUp              EventType = "LEVEL_UP"
	EventTypeCodeClicked          EventType = "CODE_CLICKED"
	EventTypeLessonCompleted      EventType = "LESSON_COMPLETED"
	EventTypeChallengeCompleted   EventType = "CHALLENGE_COMPLETED"
	EventTypeProjectStarted       EventType = "PROJECT_STARTED"
	EventTypeProjectCompleted     EventType = "PROJECT_COMPLETED"
	EventTypeDeveloperHired       EventType = "DEVELOPER_HIRED"
	EventTypeSkillUpgraded        EventType = "SKILL_UPGRADED"
	EventTypeTechnologyResearched EventType = "TECHNOLOGY_RESEARCHED"
	EventTypeAchievementUnlocked  EventType = "ACHIEVEMENT_UNLOCKED"
	EventTypeRested               EventType = "RESTED"
	EventTypeGameSaved            EventType = "GAME_SAVED"
	EventTypeGameLoaded           EventType = "GAME_LOADED"
	EventTypeGameReset            EventType = "GAME_RESET"
)

// AllTypes lists every event type the game emits.
var AllTypes = []EventType{
	EventTypeTick, EventTypeStateChanged, EventTypeEnergyLow, EventTypeStressHigh,
	EventTypeXPGained, EventTypeLevelUp, EventTypeCodeClicked, EventTypeLessonCompleted,
	EventTypeChallengeCompleted, EventTypeProjectStarted, EventTypeProjectCompleted,
	EventTypeDeveloperHired, EventTypeSkillUpgraded, EventTypeTechnologyResearched,
	EventTypeAchievementUnlocked, EventTypeRested, EventTypeGameSaved, EventTypeGameLoaded,
	EventTypeGameReset,
}

// Payload is implemented by every typed event body.
type Payload interface {
	EventType() EventType
}

// TickPayload is published once per simulation step.
type TickPayload struct {
	TickNumber int64   `json:"tick_number"`
	DeltaMs    float64 `json:"delta_ms"`
	Energy     float64 `json:"energy"`
	Stress     float64 `json:"stress"`
	Money      float64 `json:"money"`
}

// StateChangedPayload names the mutation that produced a new state.
type StateChangedPayload struct {
	Cause string `json:"cause"`
}

// EnergyLowPayload fires when energy crosses below the low threshold.
type EnergyLowPayload struct {
	Energy    float64 `json:"energy"`
	Threshold float64 `json:"threshold"`
}

// StressHighPayload fires when stress crosses above the high threshold.
type StressHighPayload struct {
	Stress    float64 `json:"stress"`
	Threshold float64 `json:"threshold"`
}

// XPGainedPayload reports one XP grant. Total is the XP after the grant and never decreases
// along the stream.
type XPGainedPayload struct {
	Amount int64  `json:"amount"`
	Total  int64  `json:"total"`
	Source string `json:"source"`
}

// LevelUpPayload fires when a grant moves the player to a higher level.
type LevelUpPayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// CodeClickedPayload fires on every click with the running click count.
type CodeClickedPayload struct {
	Clicks int64   `json:"clicks"`
	Earned float64 `json:"earned"`
}

// LessonCompletedPayload fires after a lesson is studied.
type LessonCompletedPayload struct {
	LessonID string `json:"lesson_id"`
	Total    int64  `json:"total"`
}

// ChallengeCompletedPayload fires after a challenge is solved. Reward is the money earned.
type ChallengeCompletedPayload struct {
	ChallengeID string  `json:"challenge_id"`
	Reward      float64 `json:"reward"`
	Total       int64   `json:"total"`
}

// ProjectStartedPayload fires when a project becomes the active one.
type ProjectStartedPayload struct {
	ProjectID string  `json:"project_id"`
	Effort    float64 `json:"effort"`
}

// ProjectCompletedPayload fires on the tick that finishes the active project.
type ProjectCompletedPayload struct {
	ProjectID   string  `json:"project_id"`
	RewardMoney float64 `json:"reward_money"`
	RewardXP    int64   `json:"reward_xp"`
	Total       int64   `json:"total"`
}

// DeveloperHiredPayload fires after a hire, with the price paid and the new team size.
type DeveloperHiredPayload struct {
	DeveloperID string  `json:"developer_id"`
	Role        string  `json:"role"`
	Cost        float64 `json:"cost"`
	TeamSize    int     `json:"team_size"`
}

// SkillUpgradedPayload fires after a skill gains a level.
type SkillUpgradedPayload struct {
	SkillID string  `json:"skill_id"`
	Level   int     `json:"level"`
	Cost    float64 `json:"cost"`
}

// TechnologyResearchedPayload fires once per technology.
type TechnologyResearchedPayload struct {
	TechnologyID string  `json:"technology_id"`
	Cost         float64 `json:"cost"`
}

// AchievementUnlockedPayload carries the full definition so listeners need no catalog lookup.
type AchievementUnlockedPayload struct {
	Achievement achievement.Achievement `json:"achievement"`
}

// RestedPayload carries energy and stress after a rest.
type RestedPayload struct {
	Energy float64 `json:"energy"`
	Stress float64 `json:"stress"`
}

// GameSavedPayload reports a save attempt. OK is false when the write failed.
type GameSavedPayload struct {
	Slot      string `json:"slot"`
	Timestamp int64  `json:"timestamp"`
	OK        bool   `json:"ok"`
}

// GameLoadedPayload reports a load. OfflineSeconds is the simulated time away.
type GameLoadedPayload struct {
	Slot           string  `json:"slot"`
	Found          bool    `json:"found"`
	OfflineSeconds float64 `json:"offline_seconds"`
}

// GameResetPayload fires after the game starts over.
type GameResetPayload struct{}

func (TickPayload) EventType() EventType                 { return EventTypeTick }
func (StateChangedPayload) EventType() EventType         { return EventTypeStateChanged }
func (EnergyLowPayload) EventType() EventType            { return EventTypeEnergyLow }
func (StressHighPayload) EventType() EventType           { return EventTypeStressHigh }
func (XPGainedPayload) EventType() EventType             { return EventTypeXPGained }
func (LevelUpPayload) EventType() EventType              { return EventTypeLevelUp }
func (CodeClickedPayload) EventType() EventType          { return EventTypeCodeClicked }
func (LessonCompletedPayload) EventType() EventType      { return EventTypeLessonCompleted }
func (ChallengeCompletedPayload) EventType() EventType   { return EventTypeChallengeCompleted }
func (ProjectStartedPayload) EventType() EventType       { return EventTypeProjectStarted }
func (ProjectCompletedPayload) EventType() EventType     { return EventTypeProjectCompleted }
func (DeveloperHiredPayload) EventType() EventType       { return EventTypeDeveloperHired }
func (SkillUpgradedPayload) EventType() EventType        { return EventTypeSkillUpgraded }
func (TechnologyResearchedPayload) EventType() EventType { return EventTypeTechnologyResearched }
func (AchievementUnlockedPayload) EventType() EventType  { return EventTypeAchievementUnlocked }
func (RestedPayload) EventType() EventType               { return EventTypeRested }
func (GameSavedPayload) EventType() EventType            { return EventTypeGameSaved }
func (GameLoadedPayload) EventType() EventType           { return EventTypeGameLoaded }
func (GameResetPayload) EventType() EventType            { return EventTypeGameReset }
