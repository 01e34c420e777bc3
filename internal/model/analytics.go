package model

type Analytics struct {
	Total      int             `json:"total"`
	Completed  int             `json:"completed"`
	Pending    int             `json:"pending"`
	ByPriority PriorityBuckets `json:"byPriority"`
}

type PriorityBuckets struct {
	Urgent int `json:"urgent"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}
