package survey

import (
	"github.com/nickmarkin/AAA-Summarizer/core/activity"
)

// Survey structure configuration. Mirrors the REDCap data dictionary: each
// subsection is gated by a yes/no trigger and collects repeating entries whose
// radio choices resolve to activity type keys in the registry.

type (
	// Choice binds a radio option to the registry key that prices it.
	Choice struct {
		Value       string `json:"value"`
		Label       string `json:"label"`
		ActivityKey string `json:"activity_key"`
	}

	Field struct {
		Name     string   `json:"name"`
		Label    string   `json:"label"`
		Type     string   `json:"type"` // radio | text | date | number
		Required bool     `json:"required,omitempty"`
		Choices  []Choice `json:"choices,omitempty"`
	}

	SubsectionConfig struct {
		Key  string `json:"key"`
		Name string `json:"name"`

		// CarryForward marks "report once per academic year" subsections whose
		// entries propagate read-only into later quarters.
		CarryForward bool `json:"carry_forward,omitempty"`

		// PointsPerEntryKey, when set, prices every entry at the named activity
		// type's flat rate (presence-based awards such as thesis committee
		// membership) instead of a per-entry radio choice.
		PointsPerEntryKey string `json:"points_per_entry_key,omitempty"`

		Fields []Field `json:"fields,omitempty"`
	}

	CategoryConfig struct {
		Key         string             `json:"key"`
		Name        string             `json:"name"`
		Subsections []SubsectionConfig `json:"subsections"`
	}

	// Config is the survey structure for one academic year. It is fetched per
	// transaction, never cached process-wide.
	Config struct {
		Order      []string                  `json:"category_order"`
		Categories map[string]CategoryConfig `json:"categories"`
	}
)

func (c *Config) Category(key string) (CategoryConfig, bool) {
	cat, ok := c.Categories[key]
	return cat, ok
}

func (c *Config) Subsection(categoryKey, subsectionKey string) (SubsectionConfig, bool) {
	cat, ok := c.Categories[categoryKey]
	if !ok {
		return SubsectionConfig{}, false
	}
	for _, sub := range cat.Subsections {
		if sub.Key == subsectionKey {
			return sub, true
		}
	}
	return SubsectionConfig{}, false
}

// CarryForwardSubsections returns {category: [subsection keys]} for all
// report-once-per-year subsections.
func (c *Config) CarryForwardSubsections() map[string][]string {
	result := make(map[string][]string)
	for catKey, cat := range c.Categories {
		for _, sub := range cat.Subsections {
			if sub.CarryForward {
				result[catKey] = append(result[catKey], sub.Key)
			}
		}
	}
	return result
}

// NextCategory returns the category following `current` in display order, or "".
func (c *Config) NextCategory(current string) string {
	for i, key := range c.Order {
		if key == current && i < len(c.Order)-1 {
			return c.Order[i+1]
		}
	}
	return ""
}

func radio(name, label string, choices ...Choice) Field {
	return Field{Name: name, Label: label, Type: "radio", Required: true, Choices: choices}
}

func choice(value, label, activityKey string) Choice {
	return Choice{Value: value, Label: label, ActivityKey: activityKey}
}

// DefaultConfig returns the stock survey structure. Per-year overrides stored
// in the database take precedence when present.
func DefaultConfig() *Config {
	categories := map[string]CategoryConfig{
		activity.CategoryCitizenship: {
			Key:  activity.CategoryCitizenship,
			Name: "Citizenship",
			Subsections: []SubsectionConfig{
				{
					Key: "committees", Name: "Committee Membership", CarryForward: true,
					Fields: []Field{
						radio("type", "Committee type",
							choice("unmc", "UNMC standing committee (admissions, GME, curriculum, senate, IRB)", "CIT_COMMIT_UNMC"),
							choice("nebmed", "Nebraska Medicine standing committee (MEC/med staff)", "CIT_COMMIT_NEBMED"),
							choice("minor", "Minor or ad hoc committee", "CIT_COMMIT_MINOR"),
							choice("other", "Other committee", "CIT_COMMIT_OTHER"),
						),
						{Name: "name", Label: "Committee name", Type: "text"},
					},
				},
				{
					Key: "department_activities", Name: "Department Activities",
					Fields: []Field{
						radio("type", "Activity",
							choice("gr_host", "Grand Rounds host", "CIT_DEPT_GR_HOST"),
							choice("gr_attend", "Grand Rounds attendance", "CIT_DEPT_GR_ATTEND"),
							choice("qa_attend", "QA conference attendance", "CIT_DEPT_QA_ATTEND"),
							choice("jc_host", "Journal Club host", "CIT_DEPT_JC_HOST"),
							choice("jc_attend", "Journal Club attendance", "CIT_DEPT_JC_ATTEND"),
							choice("shadow", "Shadowing host", "CIT_DEPT_SHDW_HOST"),
						),
						{Name: "date", Label: "Date", Type: "date"},
					},
				},
			},
		},
		activity.CategoryEducation: {
			Key:  activity.CategoryEducation,
			Name: "Education",
			Subsections: []SubsectionConfig{
				{
					Key: "lectures", Name: "Lectures",
					Fields: []Field{
						radio("type", "Lecture type",
							choice("lecture_new", "New lecture", "EDU_CIRC_LEC_NEW"),
							choice("lecture_revised", "Revised lecture", "EDU_CIRC_LEC_REV"),
							choice("lecture_existing", "Existing lecture", "EDU_CIRC_LEC_OLD"),
							choice("lecture_orals_mm", "Orals M&M lecture", "EDU_CIRC_LEC_ORALS"),
							choice("sim_event_resfel", "Resident/fellow simulation session", "EDU_CLIN_SIM_SESSION"),
							choice("unmc_grand_rounds_presenter", "UNMC Grand Rounds presenter", "EDU_CIRC_UNMC_GR"),
							choice("com_core_new", "COM core lecture, new", "EDU_CIRC_LEC_COM_CORE_NEW"),
							choice("com_core_revised", "COM core lecture, revised", "EDU_CIRC_LEC_COM_CORE_REV"),
							choice("com_adhoc_new", "COM ad hoc lecture, new", "EDU_CIRC_LEC_COM_ADHOC_NEW"),
							choice("com_adhoc_revised", "COM ad hoc lecture, revised", "EDU_CIRC_LEC_COM_ADHOC_REV"),
						),
						{Name: "title", Label: "Title", Type: "text"},
						{Name: "date", Label: "Date", Type: "date"},
					},
				},
				{
					Key: "board_prep", Name: "Board Preparation",
					Fields: []Field{
						radio("type", "Activity",
							choice("mock_applied_exam", "Mock applied exam", "EDU_BRD_APPLIED_EXAM"),
							choice("osce_new", "New OSCE prep material", "EDU_BRD_OSCE_PREP_NEW"),
							choice("osce_reviewer", "OSCE reviewer", "EDU_BRD_OSCE_REV"),
							choice("mock_oral_examiner", "Mock oral examiner session", "EDU_BRD_OSCE_EXM"),
						),
					},
				},
				{
					Key: "mentorship", Name: "Mentorship",
					Fields: []Field{
						radio("type", "Activity",
							choice("mentorship_poster", "Mentored poster", "EDU_MENT_POSTER"),
							choice("mentorship_abstract", "Mentored abstract", "EDU_MENT_ABSTRACT"),
							choice("mentorship_presentation", "Mentored presentation", "EDU_MENT_PRESENT_MENT"),
							choice("mentorship_publication", "Mentored publication", "EDU_MENT_PUB_MENT"),
							choice("resident_advisor", "Resident advisor", "EDU_MENT_RESADV"),
						),
						{Name: "trainee", Label: "Trainee name", Type: "text"},
					},
				},
				{
					Key: "rotation_director", Name: "Rotation Director", CarryForward: true,
					PointsPerEntryKey: "EDU_CLIN_ROTDIR",
					Fields: []Field{
						{Name: "rotation", Label: "Rotation", Type: "text", Required: true},
					},
				},
				{
					Key: "mytip", Name: "MyTIP Feedback",
					Fields: []Field{
						radio("type", "Recognition",
							choice("mtr_winner", "MyTIP report winner", "EDU_FDBK_MTR_WIN"),
							choice("mytip_each", "MyTIP mentions (enter count)", "EDU_FDBK_MTR_COUNT"),
						),
						{Name: "count", Label: "Number of mentions", Type: "number"},
					},
				},
			},
		},
		activity.CategoryResearch: {
			Key:  activity.CategoryResearch,
			Name: "Research",
			Subsections: []SubsectionConfig{
				{
					Key: "grant_review", Name: "Grant Review", CarryForward: true,
					Fields: []Field{
						radio("type", "Study section",
							choice("nih_standing", "NIH standing study section", "RSCH_EXGNT_REV_NIH_STAND"),
							choice("nih_adhoc", "NIH ad hoc study section", "RSCH_EXGNT_REV_NIH_ADHOC"),
						),
					},
				},
				{
					Key: "grant_awards", Name: "Grant Awards",
					Fields: []Field{
						radio("type", "Award size",
							choice("grant_100k_plus", "Extramural award $100k+", "RSCH_EXGNT_AWARD_100k"),
							choice("grant_50_99k", "Extramural award $50-99k", "RSCH_EXGNT_AWARD_50-99k"),
							choice("grant_10_49k", "Extramural award $10-49k", "RSCH_EXGNT_AWARD_10-49k"),
							choice("grant_under_10k", "Extramural award under $10k", "RSCH_EXGNT_AWARD_10k"),
						),
						{Name: "title", Label: "Grant title", Type: "text"},
					},
				},
				{
					Key: "grant_submissions", Name: "Grant Submissions",
					Fields: []Field{
						radio("type", "Outcome",
							choice("grant_sub_scored", "Submission scored", "RSCH_GNT_SUB_SCORE"),
							choice("grant_sub_not_scored", "Submission not scored", "RSCH_GNT_SUB_NOSCORE"),
							choice("grant_sub_mentor", "Mentored submission", "RSCH_GNT_SUB_MENT"),
						),
					},
				},
				{
					Key: "thesis_committees", Name: "Thesis Committees", CarryForward: true,
					PointsPerEntryKey: "RSCH_THESIS_MBR",
					Fields: []Field{
						{Name: "student", Label: "Student name", Type: "text", Required: true},
					},
				},
			},
		},
		activity.CategoryLeadership: {
			Key:  activity.CategoryLeadership,
			Name: "Leadership",
			Subsections: []SubsectionConfig{
				{
					Key: "education_leadership", Name: "Education Leadership", CarryForward: true,
					Fields: []Field{
						radio("type", "Role",
							choice("course_director_national", "National course director", "LEAD_EDU_DIR_COURSE"),
							choice("workshop_director", "Workshop director", "LEAD_EDU_DIR_WRKSHP"),
							choice("panel_moderator", "Panel moderator", "LEAD_EDU_MOD"),
							choice("unmc_course_director", "UNMC course director", "LEAD_EDU_DIR_COURSE_UNMC"),
							choice("unmc_moderator", "UNMC moderator", "LEAD_EDU_MOD_UNMC"),
							choice("guideline_writing_lead", "Guideline writing lead", "LEAD_EDU_GUIDELINE"),
						),
					},
				},
				{
					Key: "society", Name: "Society Leadership", CarryForward: true,
					Fields: []Field{
						radio("type", "Role",
							choice("society_bod", "Board of directors", "LEAD_SOC_MBR_BOD"),
							choice("society_rrc", "RRC member", "LEAD_SOC_MBR_RRC"),
							choice("society_committee_chair", "Major committee chair", "LEAD_SOC_CHAIR_MAJOR"),
							choice("society_committee_member", "Major committee member", "LEAD_SOC_MBR_MAJOR"),
						),
						{Name: "society", Label: "Society", Type: "text"},
					},
				},
				{
					Key: "board", Name: "Board Service",
					Fields: []Field{
						radio("type", "Role",
							choice("boards_editor", "Boards editor", "LEAD_BOARD_EDITOR"),
							choice("writing_committee_chair", "Writing committee chair", "LEAD_BOARD_CHAIR_WRITE"),
							choice("board_examiner", "Board examiner", "LEAD_BOARD_EXAMINER"),
							choice("question_writer", "Question writer", "LEAD_BOARD_QWRITE"),
						),
					},
				},
			},
		},
		activity.CategoryContentExpert: {
			Key:  activity.CategoryContentExpert,
			Name: "Content Expert",
			Subsections: []SubsectionConfig{
				{
					Key: "speaking", Name: "Invited Speaking",
					Fields: []Field{
						radio("type", "Engagement",
							choice("lecture_national_international", "National/international lecture", "EXPT_SPK_NAT_LEC"),
							choice("lecture_regional_unmc", "Regional/UNMC lecture", "EXPT_SPK_REG_LEC"),
							choice("workshop_national", "National workshop", "EXPT_SPK_NAT_WRKSHP"),
							choice("workshop_regional", "Regional workshop", "EXPT_SPK_REG_WRKSHP"),
							choice("visiting_prof_grand_rounds", "Visiting professor Grand Rounds", "EXPT_SPK_VPGR"),
							choice("non_anes_unmc_grand_rounds", "Non-anesthesia UNMC Grand Rounds", "EXPT_SPK_VPGR_UNMC"),
						),
						{Name: "title", Label: "Title", Type: "text"},
					},
				},
				{
					Key: "publications_peer", Name: "Peer-Reviewed Publications",
					Fields: []Field{
						radio("role", "Author role",
							choice("first_senior", "First/senior author (per IF point)", "EXPT_PUB_PEER_AUTH"),
							choice("coauth", "Co-author (per IF point)", "EXPT_PUB_PEER_COAUTH"),
						),
						{Name: "title", Label: "Title", Type: "text"},
						{Name: "journal", Label: "Journal", Type: "text"},
						{Name: "impact_factor", Label: "Journal impact factor (capped at 15)", Type: "number", Required: true},
						{Name: "doi", Label: "DOI", Type: "text"},
					},
				},
				{
					Key: "publications_nonpeer", Name: "Non-Peer-Reviewed Publications",
					Fields: []Field{
						radio("role", "Author role",
							choice("pub_nonpeer_first_senior", "First/senior author", "EXPT_PUB_NONPEER_AUTH"),
							choice("pub_nonpeer_coauth", "Co-author", "EXPT_PUB_NONPEER_COAUTH"),
						),
						{Name: "title", Label: "Title", Type: "text"},
					},
				},
				{
					Key: "pathways", Name: "Clinical Pathways",
					Fields: []Field{
						radio("type", "Pathway",
							choice("pathway_new", "New pathway", "EXPT_PATH_NEW"),
							choice("pathway_revised", "Revised pathway", "EXPT_PATH_REV"),
						),
					},
				},
				{
					Key: "textbooks", Name: "Textbooks & Chapters", CarryForward: true,
					Fields: []Field{
						radio("type", "Role",
							choice("textbook_senior_editor_major", "Senior editor, major text", "EXPT_TXT_SENEDT_MAJOR"),
							choice("textbook_senior_editor_minor", "Senior editor, minor text", "EXPT_TXT_SENEDT_MINOR"),
							choice("textbook_section_editor_major", "Section editor, major text", "EXPT_TXT_SECEDT_MAJOR"),
							choice("textbook_section_editor_minor", "Section editor, minor text", "EXPT_TXT_SECEDT_MINOR"),
							choice("chapter_first_senior_major", "Chapter first/senior author, major", "EXPT_TEXT_CHAP_AUTH_MAJOR"),
							choice("chapter_first_senior_minor", "Chapter first/senior author, minor", "EXPT_TEXT_CHAP_AUTH_MINOR"),
							choice("chapter_coauth_major", "Chapter co-author, major", "EXPT_TEXT_CHAP_COAUTH_MAJOR"),
							choice("chapter_coauth_minor", "Chapter co-author, minor", "EXPT_TEXT_CHAP_COAUTH_MINOR"),
						),
						{Name: "title", Label: "Title", Type: "text"},
					},
				},
				{
					Key: "abstracts", Name: "Research Abstracts",
					Fields: []Field{
						radio("type", "Author role",
							choice("abstract_first_senior", "First/senior author", "EXPT_RSCHABST_AUTH"),
							choice("abstract_2nd_trainee_1st", "2nd author with trainee 1st", "EXPT_RSCHABST_AUTH_MENT"),
							choice("abstract_coauth", "Co-author", "EXPT_RSCHABST_COAUTH"),
						),
					},
				},
				{
					Key: "journal_editorial", Name: "Journal Editorial Roles", CarryForward: true,
					Fields: []Field{
						radio("type", "Role",
							choice("journal_editor_chief", "Editor-in-chief", "EXPT_JOL_EDITOR"),
							choice("journal_section_editor", "Section editor", "EXPT_JOL_SECEDIT"),
							choice("journal_special_edition", "Special edition editor", "EXPT_JOL_SPECEDIT"),
							choice("journal_editorial_board", "Editorial board member", "EXPT_JOL_EDITBRD"),
							choice("journal_adhoc_reviewer", "Ad hoc reviewer", "EXPT_JOL_EDITADHOC"),
						),
						{Name: "journal", Label: "Journal", Type: "text"},
					},
				},
			},
		},
	}

	return &Config{
		Order:      append([]string(nil), activity.CategoryOrder...),
		Categories: categories,
	}
}
