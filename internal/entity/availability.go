package entity

// Slot — занятый интервал в пределах дня; границы упакованы как чч*100+мм
type Slot struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DayAvailability — занятые интервалы одного дня в порядке возрастания начала
type DayAvailability struct {
	Day   Day    `json:"day"`
	Slots []Slot `json:"slots"`
}
