package kafka

import "strings"

// Config holds Kafka connection parameters.
type Config struct {
	// ConsumerGroup is optional. Without a group the consumer reads every
	// partition from FromBeginning and never commits offsets.
	ConsumerGroup string

	SASLMechanism string // "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string

	Brokers []string

	TLS           bool
	SASLEnabled   bool
	FromBeginning bool
}

// ParseBrokers splits a comma separated broker list, dropping empty entries.
func ParseBrokers(list string) []string {
	var brokers []string
	for _, b := range strings.Split(list, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
