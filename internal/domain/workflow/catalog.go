package workflow

// Catalog returns the fixed set of workflow definitions the agency runs.
// Integration names are opaque capability identifiers resolved by the
// dispatcher at execution time.
func Catalog() []Definition {
	return []Definition{
		{
			ID:          "employee-onboarding",
			Name:        "Employee Onboarding",
			Description: "Credential verification, HR file creation, payroll setup and orientation scheduling for new clinical hires",
			Trigger:     Trigger{Type: TriggerManual},
			Enabled:     true,
			Steps: []Step{
				{
					ID:          "verify-documents",
					Name:        "Verify Documents",
					Description: "Verify licenses, certifications and identity documents",
					Integration: "sterling",
					Action:      "verify_documents",
					Parameters:  map[string]interface{}{"document_types": []string{"license", "certification", "identity"}},
					OnError:     "notify_hr_manager",
				},
				{
					ID:               "create-hr-file",
					Name:             "Create HR File",
					Description:      "Create the employee's personnel record",
					Integration:      "supabase",
					Action:           "create_record",
					Parameters:       map[string]interface{}{"table": "employees"},
					RequiresApproval: true,
					ApprovalLevel:    ApprovalQARN,
				},
				{
					ID:          "setup-payroll",
					Name:        "Setup Payroll",
					Description: "Register the employee with the payroll system",
					Integration: "axxess",
					Action:      "create_employee",
					OnError:     "notify_hr_manager",
				},
				{
					ID:               "schedule-orientation",
					Name:             "Schedule Orientation",
					Description:      "Book the clinical orientation session",
					Integration:      "scheduling",
					Action:           "book_orientation",
					Parameters:       map[string]interface{}{"duration_hours": 8},
					RequiresApproval: true,
					ApprovalLevel:    ApprovalClinicalDirector,
				},
				{
					ID:          "send-welcome-email",
					Name:        "Send Welcome Email",
					Description: "Send onboarding welcome packet",
					Integration: "sendgrid",
					Action:      "send_email",
					Parameters:  map[string]interface{}{"template": "welcome_packet"},
					Condition:   "email_present",
					OnSuccess:   "log_welcome_sent",
				},
				{
					ID:               FinalApprovalStepID,
					Name:             "Final Approval",
					Description:      "Clinical director sign-off on the completed onboarding",
					Integration:      "approval",
					Action:           "record_signoff",
					ApprovalRequired: true,
				},
			},
			RequiresFinalApproval: true,
			FinalApprovalLevel:    ApprovalClinicalDirector,
			ComplianceLevel:       ComplianceHigh,
		},
		{
			ID:          "compliance-monitoring",
			Name:        "Compliance Monitoring",
			Description: "Scans staff records for expiring licenses, TB tests and CPR certifications and notifies the owners",
			Trigger:     Trigger{Type: TriggerEvent, Event: "compliance.scan_due"},
			Enabled:     true,
			Steps: []Step{
				{
					ID:          "scan-licenses",
					Name:        "Scan License Expirations",
					Integration: "ai-qa",
					Action:      "scan_expirations",
					Parameters:  map[string]interface{}{"record_type": "license", "window_days": 60},
				},
				{
					ID:          "scan-tb-tests",
					Name:        "Scan TB Test Expirations",
					Integration: "ai-qa",
					Action:      "scan_expirations",
					Parameters:  map[string]interface{}{"record_type": "tb_test", "window_days": 30},
				},
				{
					ID:          "scan-cpr",
					Name:        "Scan CPR Certifications",
					Integration: "ai-qa",
					Action:      "scan_expirations",
					Parameters:  map[string]interface{}{"record_type": "cpr", "window_days": 45},
				},
				{
					ID:          "notify-expirations",
					Name:        "Notify Expirations",
					Integration: "sendgrid",
					Action:      "send_email",
					Parameters:  map[string]interface{}{"template": "compliance_expiration"},
					OnError:     "notify_compliance_officer",
				},
			},
			ComplianceLevel: ComplianceCritical,
		},
		{
			ID:          "background-check",
			Name:        "Background Check",
			Description: "Orders a background check, polls for the result and evaluates it",
			Trigger:     Trigger{Type: TriggerEvent, Event: "hr.background_check_requested"},
			Enabled:     true,
			Steps: []Step{
				{
					ID:          "order-check",
					Name:        "Order Background Check",
					Integration: "sterling",
					Action:      "order_check",
					Parameters:  map[string]interface{}{"package": "healthcare_standard"},
				},
				{
					ID:          "poll-result",
					Name:        "Poll Check Result",
					Integration: "sterling",
					Action:      "poll_result",
				},
				{
					ID:               "evaluate-result",
					Name:             "Evaluate Result",
					Description:      "QA review of background check findings",
					Integration:      "sterling",
					Action:           "evaluate_result",
					RequiresApproval: true,
					ApprovalLevel:    ApprovalQARN,
					OnError:          "notify_hr_manager",
				},
			},
			ComplianceLevel: ComplianceCritical,
		},
		{
			ID:          "oasis-qa-review",
			Name:        "OASIS QA Review",
			Description: "Automated OASIS assessment analysis with QA nurse review of flagged issues",
			Trigger:     Trigger{Type: TriggerEvent, Event: "oasis.assessment_submitted"},
			Enabled:     true,
			Steps: []Step{
				{
					ID:          "analyze-assessment",
					Name:        "Analyze Assessment",
					Integration: "ai-qa",
					Action:      "analyze_oasis",
				},
				{
					ID:          "flag-issues",
					Name:        "Flag Issues",
					Integration: "ai-qa",
					Action:      "flag_issues",
					Condition:   "issues_found",
				},
				{
					ID:          "notify-qa-nurse",
					Name:        "Notify QA Nurse",
					Integration: "sendgrid",
					Action:      "send_email",
					Parameters:  map[string]interface{}{"template": "oasis_review_ready"},
				},
			},
			RequiresFinalApproval: true,
			FinalApprovalLevel:    ApprovalQARN,
			ComplianceLevel:       ComplianceHigh,
		},
		{
			ID:          "document-verification",
			Name:        "Document Verification",
			Description: "OCR extraction and field validation for inbound referral documents",
			Trigger:     Trigger{Type: TriggerManual},
			Enabled:     true,
			Steps: []Step{
				{
					ID:          "ocr-extract",
					Name:        "OCR Extract",
					Integration: "ai-qa",
					Action:      "ocr_extract",
				},
				{
					ID:          "validate-fields",
					Name:        "Validate Fields",
					Integration: "ai-qa",
					Action:      "validate_fields",
					Parameters:  map[string]interface{}{"required_fields": []string{"patient_name", "dob", "physician"}},
				},
				{
					ID:          "file-to-chart",
					Name:        "File To Chart",
					Integration: "supabase",
					Action:      "attach_document",
					Condition:   "validated",
				},
			},
			ComplianceLevel: ComplianceStandard,
		},
	}
}
