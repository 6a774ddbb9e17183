// Package inmemdb provides map-backed repositories for tests and local
// development. The exec variadics are accepted and ignored: every operation
// runs against the shared in-process tables.
package inmemdb

import (
	"sync"

	"github.com/nickmarkin/AAA-Summarizer/core/activity"
	"github.com/nickmarkin/AAA-Summarizer/core/department"
	"github.com/nickmarkin/AAA-Summarizer/core/faculty"
	"github.com/nickmarkin/AAA-Summarizer/core/review"
	"github.com/nickmarkin/AAA-Summarizer/core/survey"
)

type DB struct {
	mutex sync.RWMutex

	activityTypes map[string]*activity.ActivityType // by key
	facultyByMail map[string]*faculty.FacultyMember // by email

	records       map[string]*survey.Record // by faculty_email|year_code
	imports       map[string]*survey.Import
	campaigns     map[string]*survey.Campaign
	invitations   map[string]*survey.Invitation
	responses     map[string]*survey.Response // by invitation ID
	history       []survey.ResponseHistory
	emailLogs     []survey.EmailLog
	configsByYear map[string]*survey.Config

	deptRecords map[string]*department.Record // by faculty_email|year_code

	entryReviews  map[string]*review.EntryReview         // by faculty_email|year_code|entry_id
	annualReviews map[string]*review.FacultyAnnualReview // by faculty_email|year_code
}

func NewDB() *DB {
	return &DB{
		activityTypes: make(map[string]*activity.ActivityType),
		facultyByMail: make(map[string]*faculty.FacultyMember),
		records:       make(map[string]*survey.Record),
		imports:       make(map[string]*survey.Import),
		campaigns:     make(map[string]*survey.Campaign),
		invitations:   make(map[string]*survey.Invitation),
		responses:     make(map[string]*survey.Response),
		configsByYear: make(map[string]*survey.Config),
		deptRecords:   make(map[string]*department.Record),
		entryReviews:  make(map[string]*review.EntryReview),
		annualReviews: make(map[string]*review.FacultyAnnualReview),
	}
}

func yearKey(email, yearCode string) string { return email + "|" + yearCode }
