package statushandler

type StatusResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	Rooms        int    `json:"rooms"`
	Participants int    `json:"participants"`
}
