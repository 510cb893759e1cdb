package mail

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type dealWonData struct {
	LeadName string
	Value    string
}

type dealLostData struct {
	LeadName string
	Reason   string
}

type taskReminderData struct {
	LeadName string
	Title    string
	DueDate  string
	DueTime  string
}
