package activity

// DefaultSchedule returns the department's stock point schedule, used to seed
// the registry (apps/admin seedtypes). Keys match the REDCap data variables so
// imports and surveys resolve against the same table.
func DefaultSchedule() []NewActivityType {
	fixed := func(key, name, category, goal string, points int) NewActivityType {
		return NewActivityType{
			Key:        key,
			Name:       name,
			Category:   category,
			Goal:       goal,
			Modifier:   string(ModifierFixed),
			BasePoints: points,
		}
	}

	types := []NewActivityType{
		// Citizenship
		fixed("CIT_COMMIT_UNMC", "UNMC standing committee", CategoryCitizenship, "Committees", 1000),
		fixed("CIT_COMMIT_NEBMED", "Nebraska Medicine standing committee", CategoryCitizenship, "Committees", 500),
		fixed("CIT_COMMIT_MINOR", "Minor or ad hoc committee", CategoryCitizenship, "Committees", 100),
		fixed("CIT_COMMIT_OTHER", "Other committee", CategoryCitizenship, "Committees", 0),
		fixed("CIT_DEPT_GR_HOST", "Grand Rounds host", CategoryCitizenship, "Department Activities", 300),
		fixed("CIT_DEPT_GR_ATTEND", "Grand Rounds attendance", CategoryCitizenship, "Department Activities", 50),
		fixed("CIT_DEPT_QA_ATTEND", "QA conference attendance", CategoryCitizenship, "Department Activities", 50),
		fixed("CIT_DEPT_JC_HOST", "Journal Club host", CategoryCitizenship, "Department Activities", 300),
		fixed("CIT_DEPT_JC_ATTEND", "Journal Club attendance", CategoryCitizenship, "Department Activities", 50),
		fixed("CIT_DEPT_SHDW_HOST", "Shadowing host", CategoryCitizenship, "Department Activities", 50),
		fixed("CIT_EVAL_80%", "Completed 80%+ of assigned evaluations", CategoryCitizenship, "Evaluations", 2000),

		// Education
		fixed("EDU_TEACH_TEACHYEAR", "Teacher of the Year", CategoryEducation, "Teaching Recognition", 7500),
		fixed("EDU_TEACH_TEACHHONMEN", "Teacher of the Year honorable mention", CategoryEducation, "Teaching Recognition", 5000),
		fixed("EDU_TEACH_TOP25", "Teaching evaluations top 25%", CategoryEducation, "Teaching Recognition", 2500),
		fixed("EDU_TEACH_2565", "Teaching evaluations 25-65%", CategoryEducation, "Teaching Recognition", 1000),
		fixed("EDU_CIRC_LEC_NEW", "New lecture", CategoryEducation, "Lectures", 250),
		fixed("EDU_CIRC_LEC_REV", "Revised lecture", CategoryEducation, "Lectures", 100),
		fixed("EDU_CIRC_LEC_OLD", "Existing lecture", CategoryEducation, "Lectures", 50),
		fixed("EDU_CIRC_LEC_ORALS", "Orals M&M lecture", CategoryEducation, "Lectures", 75),
		fixed("EDU_CLIN_SIM_SESSION", "Resident/fellow simulation session", CategoryEducation, "Lectures", 150),
		fixed("EDU_CIRC_UNMC_GR", "UNMC Grand Rounds presenter", CategoryEducation, "Lectures", 500),
		fixed("EDU_CIRC_LEC_COM_CORE_NEW", "COM core lecture, new", CategoryEducation, "Lectures", 500),
		fixed("EDU_CIRC_LEC_COM_CORE_REV", "COM core lecture, revised", CategoryEducation, "Lectures", 250),
		fixed("EDU_CIRC_LEC_COM_ADHOC_NEW", "COM ad hoc lecture, new", CategoryEducation, "Lectures", 250),
		fixed("EDU_CIRC_LEC_COM_ADHOC_REV", "COM ad hoc lecture, revised", CategoryEducation, "Lectures", 100),
		fixed("EDU_BRD_APPLIED_EXAM", "Mock applied exam", CategoryEducation, "Board Preparation", 1000),
		fixed("EDU_BRD_OSCE_PREP_NEW", "New OSCE prep material", CategoryEducation, "Board Preparation", 250),
		fixed("EDU_BRD_OSCE_REV", "OSCE reviewer", CategoryEducation, "Board Preparation", 150),
		fixed("EDU_BRD_OSCE_EXM", "Mock oral examiner session", CategoryEducation, "Board Preparation", 50),
		fixed("EDU_MENT_POSTER", "Mentored poster", CategoryEducation, "Mentorship", 250),
		fixed("EDU_MENT_ABSTRACT", "Mentored abstract", CategoryEducation, "Mentorship", 500),
		fixed("EDU_MENT_PRESENT_MENT", "Mentored presentation", CategoryEducation, "Mentorship", 100),
		fixed("EDU_MENT_PUB_MENT", "Mentored publication", CategoryEducation, "Mentorship", 100),
		fixed("EDU_MENT_RESADV", "Resident advisor", CategoryEducation, "Mentorship", 50),
		fixed("EDU_CLIN_ROTDIR", "Rotation director", CategoryEducation, "Clinical Teaching", 500),
		fixed("EDU_FDBK_MTR_WIN", "MyTIP report winner", CategoryEducation, "Feedback", 250),

		// Research
		fixed("RSCH_EXGNT_REV_NIH_STAND", "NIH standing study section", CategoryResearch, "Grant Review", 5000),
		fixed("RSCH_EXGNT_REV_NIH_ADHOC", "NIH ad hoc study section", CategoryResearch, "Grant Review", 2500),
		fixed("RSCH_EXGNT_AWARD_100k", "Extramural grant award $100k+", CategoryResearch, "Grant Awards", 5000),
		fixed("RSCH_EXGNT_AWARD_50-99k", "Extramural grant award $50-99k", CategoryResearch, "Grant Awards", 3000),
		fixed("RSCH_EXGNT_AWARD_10-49k", "Extramural grant award $10-49k", CategoryResearch, "Grant Awards", 2500),
		fixed("RSCH_EXGNT_AWARD_10k", "Extramural grant award under $10k", CategoryResearch, "Grant Awards", 1500),
		fixed("RSCH_GNT_SUB_SCORE", "Grant submission, scored", CategoryResearch, "Grant Submissions", 2000),
		fixed("RSCH_GNT_SUB_NOSCORE", "Grant submission, not scored", CategoryResearch, "Grant Submissions", 500),
		fixed("RSCH_GNT_SUB_MENT", "Mentored grant submission", CategoryResearch, "Grant Submissions", 250),
		fixed("RSCH_THESIS_MBR", "Thesis committee member", CategoryResearch, "Thesis Committees", 1000),

		// Leadership
		fixed("LEAD_EDU_DIR_COURSE", "National course director", CategoryLeadership, "Education", 3000),
		fixed("LEAD_EDU_DIR_WRKSHP", "Workshop director", CategoryLeadership, "Education", 500),
		fixed("LEAD_EDU_MOD", "Panel moderator", CategoryLeadership, "Education", 250),
		fixed("LEAD_EDU_DIR_COURSE_UNMC", "UNMC course director", CategoryLeadership, "Education", 1000),
		fixed("LEAD_EDU_MOD_UNMC", "UNMC moderator", CategoryLeadership, "Education", 100),
		fixed("LEAD_EDU_GUIDELINE", "Guideline writing lead", CategoryLeadership, "Education", 1000),
		fixed("LEAD_SOC_MBR_BOD", "Society board of directors", CategoryLeadership, "Society", 5000),
		fixed("LEAD_SOC_MBR_RRC", "Society RRC member", CategoryLeadership, "Society", 5000),
		fixed("LEAD_SOC_CHAIR_MAJOR", "Major society committee chair", CategoryLeadership, "Society", 3000),
		fixed("LEAD_SOC_MBR_MAJOR", "Major society committee member", CategoryLeadership, "Society", 1000),
		fixed("LEAD_BOARD_EDITOR", "Boards editor", CategoryLeadership, "Board", 5000),
		fixed("LEAD_BOARD_CHAIR_WRITE", "Writing committee chair", CategoryLeadership, "Board", 3000),
		fixed("LEAD_BOARD_EXAMINER", "Board examiner", CategoryLeadership, "Board", 2000),
		fixed("LEAD_BOARD_QWRITE", "Board question writer", CategoryLeadership, "Board", 1000),

		// Content Expert
		fixed("EXPT_SPK_NAT_LEC", "National/international lecture", CategoryContentExpert, "Speaking", 500),
		fixed("EXPT_SPK_REG_LEC", "Regional/UNMC lecture", CategoryContentExpert, "Speaking", 250),
		fixed("EXPT_SPK_NAT_WRKSHP", "National workshop", CategoryContentExpert, "Speaking", 250),
		fixed("EXPT_SPK_REG_WRKSHP", "Regional workshop", CategoryContentExpert, "Speaking", 100),
		fixed("EXPT_SPK_VPGR", "Visiting professor Grand Rounds", CategoryContentExpert, "Speaking", 500),
		fixed("EXPT_SPK_VPGR_UNMC", "Non-anesthesia UNMC Grand Rounds", CategoryContentExpert, "Speaking", 250),
		fixed("EXPT_PUB_NONPEER_AUTH", "Non-peer-reviewed publication, first/senior author", CategoryContentExpert, "Publications", 500),
		fixed("EXPT_PUB_NONPEER_COAUTH", "Non-peer-reviewed publication, co-author", CategoryContentExpert, "Publications", 150),
		fixed("EXPT_PATH_NEW", "New clinical pathway", CategoryContentExpert, "Pathways", 300),
		fixed("EXPT_PATH_REV", "Revised clinical pathway", CategoryContentExpert, "Pathways", 150),
		fixed("EXPT_TXT_SENEDT_MAJOR", "Textbook senior editor, major", CategoryContentExpert, "Textbooks", 20000),
		fixed("EXPT_TXT_SENEDT_MINOR", "Textbook senior editor, minor", CategoryContentExpert, "Textbooks", 10000),
		fixed("EXPT_TXT_SECEDT_MAJOR", "Textbook section editor, major", CategoryContentExpert, "Textbooks", 10000),
		fixed("EXPT_TXT_SECEDT_MINOR", "Textbook section editor, minor", CategoryContentExpert, "Textbooks", 5000),
		fixed("EXPT_TEXT_CHAP_AUTH_MAJOR", "Chapter first/senior author, major", CategoryContentExpert, "Textbooks", 7000),
		fixed("EXPT_TEXT_CHAP_AUTH_MINOR", "Chapter first/senior author, minor", CategoryContentExpert, "Textbooks", 3000),
		fixed("EXPT_TEXT_CHAP_COAUTH_MAJOR", "Chapter co-author, major", CategoryContentExpert, "Textbooks", 3000),
		fixed("EXPT_TEXT_CHAP_COAUTH_MINOR", "Chapter co-author, minor", CategoryContentExpert, "Textbooks", 500),
		fixed("EXPT_RSCHABST_AUTH", "Research abstract, first/senior author", CategoryContentExpert, "Abstracts", 500),
		fixed("EXPT_RSCHABST_AUTH_MENT", "Research abstract, 2nd author with trainee 1st", CategoryContentExpert, "Abstracts", 500),
		fixed("EXPT_RSCHABST_COAUTH", "Research abstract, co-author", CategoryContentExpert, "Abstracts", 250),
		fixed("EXPT_JOL_EDITOR", "Journal editor-in-chief", CategoryContentExpert, "Journal Editorial", 20000),
		fixed("EXPT_JOL_SECEDIT", "Journal section editor", CategoryContentExpert, "Journal Editorial", 10000),
		fixed("EXPT_JOL_SPECEDIT", "Journal special edition editor", CategoryContentExpert, "Journal Editorial", 10000),
		fixed("EXPT_JOL_EDITBRD", "Journal editorial board", CategoryContentExpert, "Journal Editorial", 5000),
		fixed("EXPT_JOL_EDITADHOC", "Journal ad hoc reviewer", CategoryContentExpert, "Journal Editorial", 1000),
	}

	// count- and IF-modified types
	types = append(types,
		NewActivityType{
			Key: "EDU_FDBK_MTR_COUNT", Name: "MyTIP mentions", Category: CategoryEducation, Goal: "Feedback",
			Modifier: string(ModifierCount), BasePoints: 25, MaxPoints: 3000, // 120 mentions/year
		},
		NewActivityType{
			Key: "EXPT_PUB_PEER_AUTH", Name: "Peer-reviewed publication, first/senior author", Category: CategoryContentExpert, Goal: "Publications",
			Modifier: string(ModifierImpactFactor), BasePoints: 1000,
		},
		NewActivityType{
			Key: "EXPT_PUB_PEER_COAUTH", Name: "Peer-reviewed publication, co-author", Category: CategoryContentExpert, Goal: "Publications",
			Modifier: string(ModifierImpactFactor), BasePoints: 300,
		},
	)
	return types
}
