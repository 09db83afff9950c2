package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	m "github.com/appealdesk/appealdesk/settings/models"
	u "github.com/appealdesk/appealdesk/settings/utils"
)

// Practice profile
func GetPractice(c *gin.Context) {
	practice := m.Practice{ID: 1, Name: "Demo Family Clinic", Email: "demo@example.com"}
	u.JSON(c, http.StatusOK, practice)
}

func UpdatePractice(c *gin.Context) {
	var req m.UpdatePracticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		u.Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	u.JSON(c, http.StatusOK, gin.H{"status": "updated"})
}

func UploadLogo(c *gin.Context) {
	u.JSON(c, http.StatusCreated, m.UploadLogoResponse{URL: "https://example.com/logo.png"})
}

// Account
func GetAccountSettings(c *gin.Context) {
	u.JSON(c, http.StatusOK, m.AccountSettings{Language: "en", Timezone: "UTC", Theme: "system"})
}

func UpdateAccountSettings(c *gin.Context) {
	var req m.UpdateAccountSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		u.Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	u.JSON(c, http.StatusOK, gin.H{"status": "updated"})
}

func ChangePassword(c *gin.Context) {
	var req m.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.NewPassword == "" {
		u.Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	u.JSON(c, http.StatusOK, gin.H{"status": "changed"})
}

// Letter preferences
func GetLetterSettings(c *gin.Context) {
	u.JSON(c, http.StatusOK, m.LetterSettings{
		Letterhead:       true,
		Tone:             "formal",
		IncludeCitations: true,
		SignatureBlock:   "Sincerely,\nDemo Family Clinic",
	})
}

func UpdateLetterSettings(c *gin.Context) {
	var req m.UpdateLetterSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		u.Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Tone != nil {
		switch *req.Tone {
		case "formal", "firm", "conciliatory":
		default:
			u.Error(c, http.StatusBadRequest, "invalid tone")
			return
		}
	}
	u.JSON(c, http.StatusOK, gin.H{"status": "updated"})
}

func UpdateSignature(c *gin.Context) {
	var req m.UpdateSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SignatureBlock == "" {
		u.Error(c, http.StatusBadRequest, "invalid signature")
		return
	}
	u.JSON(c, http.StatusOK, gin.H{"status": "updated"})
}

// Notifications
func GetNotificationSettings(c *gin.Context) {
	u.JSON(c, http.StatusOK, m.NotificationSettings{EmailOnLetterReady: true, EmailOnQuotaLow: true, QuotaThreshold: 80})
}

func UpdateNotificationSettings(c *gin.Context) {
	var req m.UpdateNotificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		u.Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	u.JSON(c, http.StatusOK, gin.H{"status": "updated"})
}

func UpdateQuotaThreshold(c *gin.Context) {
	var req m.UpdateQuotaThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.QuotaThreshold < 0 || req.QuotaThreshold > 100 {
		u.Error(c, http.StatusBadRequest, "invalid threshold")
		return
	}
	u.JSON(c, http.StatusOK, gin.H{"status": "updated", "quotaThreshold": req.QuotaThreshold})
}

// Billing
func GetPlan(c *gin.Context) {
	quota := int64(5)
	trialEnd := time.Now().AddDate(0, 0, 10)
	u.JSON(c, http.StatusOK, m.PlanSummary{Plan: "starter", AppealQuota: &quota, TrialEndDate: &trialEnd})
}

func RequestUpgrade(c *gin.Context) {
	var req m.UpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		u.Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	switch req.Plan {
	case "pro", "enterprise":
	default:
		u.Error(c, http.StatusBadRequest, "invalid plan")
		return
	}
	u.JSON(c, http.StatusCreated, gin.H{"status": "requested", "plan": req.Plan})
}

// Team & Access
func ListTeamMembers(c *gin.Context) {
	u.JSON(c, http.StatusOK, []m.TeamMember{{ID: "u1", Email: "demo@example.com", Role: "owner", Status: "active"}})
}

func InviteTeamMember(c *gin.Context) {
	var req m.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Role == "" {
		u.Error(c, http.StatusBadRequest, "invalid invite")
		return
	}
	u.JSON(c, http.StatusCreated, gin.H{"status": "invited", "email": req.Email})
}

func UpdateTeamMember(c *gin.Context) {
	var req m.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		u.Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	u.JSON(c, http.StatusOK, gin.H{"status": "updated"})
}

func DeleteTeamMember(c *gin.Context) {
	u.JSON(c, http.StatusNoContent, nil)
}
