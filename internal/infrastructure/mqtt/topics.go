package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of every topic this service uses.
const TopicPrefix = "adaptivecover"

// Topics provides builders for MQTT topics.
//
//	mqtt.Topics{}.NumberState("abc123", "distance")
//	// adaptivecover/abc123/number/distance/state
type Topics struct{}

// NumberState is the retained state topic of a number entity.
func (Topics) NumberState(entryID, key string) string {
	return fmt.Sprintf("%s/%s/number/%s/state", TopicPrefix, entryID, key)
}

// NumberSet is the command topic of a number entity.
func (Topics) NumberSet(entryID, key string) string {
	return fmt.Sprintf("%s/%s/number/%s/set", TopicPrefix, entryID, key)
}

// AllNumberSets matches the command topic of every number entity.
func (Topics) AllNumberSets() string {
	return TopicPrefix + "/+/number/+/set"
}

// CoverState is the retained coordinator data topic of an entry.
func (Topics) CoverState(entryID string) string {
	return fmt.Sprintf("%s/%s/cover/state", TopicPrefix, entryID)
}

// SystemStatus carries the online/offline status and the LWT.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// ParseNumberSet extracts entry id and key from a NumberSet topic.
func ParseNumberSet(topic string) (entryID, key string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 5 || parts[0] != TopicPrefix || parts[2] != "number" || parts[4] != "set" ||
		parts[1] == "" || parts[3] == "" {
		return "", "", fmt.Errorf("%w: %q is not a number set topic", ErrInvalidTopic, topic)
	}
	return parts[1], parts[3], nil
}
