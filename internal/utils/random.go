package utils

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/mozillazg/go-pinyin"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

var preferenceTexts = []string{
	"家里有事，希望休息",
	"想上早班",
	"需要去医院复查",
	"孩子开家长会",
	"希望和同事调班",
	"这天有考试",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateLoginFromChineseName 用姓名拼音的前缀加上随机数字生成登录名，例如 wangw12
func GenerateLoginFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	login := ""

	for _, p := range pinyinArray {
		length := rand.Intn(len(p)) + 1
		login += p[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		login += string(digits[rand.Intn(len(digits))])
	}

	return login
}

func GenerateRandomEmployee(positions []string, emailDomainName string) *domain.Employee {
	fullName := GenerateRandomChineseName()
	email := GenerateLoginFromChineseName(fullName) + "@" + emailDomainName

	employee := &domain.Employee{
		ID:       uuid.NewString(),
		FullName: fullName,
		Email:    &email,
	}

	if len(positions) > 0 {
		position := positions[rand.Intn(len(positions))]
		employee.Position = &position
	}

	return employee
}

// GenerateRandomPreferences 在窗口内随机挑选最多 maxDays 天生成意愿，日期不重复
func GenerateRandomPreferences(employee *domain.Employee, window calendar.Window, maxDays int) []*domain.Preference {
	if maxDays <= 0 || len(window.Days) == 0 {
		return nil
	}

	days := append([]calendar.Day{}, window.Days...) // 复制一份，避免修改窗口
	rand.Shuffle(len(days), func(i, j int) {
		days[i], days[j] = days[j], days[i]
	})

	n := rand.Intn(min(maxDays, len(days)) + 1)
	preferences := make([]*domain.Preference, 0, n)
	for _, day := range days[:n] {
		preferences = append(preferences, &domain.Preference{
			ID:         uuid.NewString(),
			EmployeeID: employee.ID,
			Date:       day.Date,
			Text:       preferenceTexts[rand.Intn(len(preferenceTexts))],
		})
	}

	return preferences
}
