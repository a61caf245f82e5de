// Package alerts turns health level changes into webhook notifications.
//
// Engine.Evaluate is fed every published panel view. A health series fires
// when its level reaches the configured minimum (warning or error) and
// resolves when it drops below it or disappears from the panel. Repeated
// fires of the same series within the cooldown are suppressed. Notifications
// are delivered to Teams, Slack, or generic HTTP targets.
package alerts
