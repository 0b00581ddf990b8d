package domain

// Answer labels, in the order the questionnaire records them.
// LabelVoice and LabelVideo carry media handles and stay out of the report body.
const (
	LabelCategory    = "Ish turi"
	LabelName        = "Ism-familya"
	LabelPhone       = "Telefon"
	LabelAddress     = "Manzil (propiska)"
	LabelBirthDate   = "Tug'ilgan sana"
	LabelEducation   = "Ma'lumoti"
	LabelExperience  = "Ish tajribasi"
	LabelMarital     = "Oilaviy holat"
	LabelVoice       = "Voice file_id"
	LabelRussian     = "Rus tili"
	LabelVideo       = "Video file_id"
	LabelConsent     = "Rozilik (surishtirish)"
	LabelReferee     = "Tavsiya beruvchi"
	LabelTenure      = "Bizda qancha muddat ishlamoqchi"
	LabelOvertime    = "Ishdan keyin qolish rozilik"
	LabelHealth      = "Sog'liq holati"
	LabelLateness    = "Nega kech kelishadi"
	LabelTheft       = "Nega o'g'rilik qilishadi"
	LabelWorkQuality = "Ish sifati sababi"
	LabelPrevSalary  = "Oldingi maosh"
	LabelWantSalary  = "Istalgan maosh"
	LabelCourses     = "Kurslar"
)
