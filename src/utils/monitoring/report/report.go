package report

type Report struct {
	Run            *RunReport            `json:"run,omitempty"`
	Publisher      *PublisherReport      `json:"publisher,omitempty"`
	RedisPublisher *RedisPublisherReport `json:"redis_publisher,omitempty"`
}
