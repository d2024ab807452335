package collectors

import (
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/job-finder/internal/jobs"
)

type platform struct {
	name   string
	source string
	decode func(Item) (jobs.Posting, error)
}

var platforms = []platform{
	{name: "linkedin", source: "LinkedIn", decode: decodeRecord[linkedinRecord]},
	{name: "indeed", source: "Indeed", decode: decodeRecord[indeedRecord]},
	{name: "google_jobs", source: "Google Jobs", decode: decodeRecord[googleJobsRecord]},
	{name: "glassdoor", source: "Glassdoor", decode: decodeRecord[glassdoorRecord]},
	{name: "rozee_pk", source: "Rozee.pk", decode: decodeRecord[rozeeRecord]},
}

type record interface {
	posting() jobs.Posting
}

func decodeRecord[R record](item Item) (jobs.Posting, error) {
	var r R
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &r,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return jobs.Posting{}, err
	}
	if err := decoder.Decode(item); err != nil {
		return jobs.Posting{}, err
	}
	return r.posting(), nil
}

type linkedinRecord struct {
	Title         string `mapstructure:"title"`
	CompanyName   string `mapstructure:"companyName"`
	Location      string `mapstructure:"formattedLocation"`
	WorkplaceType string `mapstructure:"workplaceType"`
	Experience    string `mapstructure:"experienceLevel"`
	Salary        string `mapstructure:"salary"`
	URL           string `mapstructure:"jobPostingUrl"`
	Description   string `mapstructure:"descriptionText"`
}

func (r linkedinRecord) posting() jobs.Posting {
	return jobs.Posting{
		Title:           r.Title,
		Company:         r.CompanyName,
		Experience:      r.Experience,
		WorkArrangement: r.WorkplaceType,
		Location:        r.Location,
		Salary:          r.Salary,
		ApplyLink:       r.URL,
		Description:     r.Description,
	}
}

type indeedRecord struct {
	JobTitle   string   `mapstructure:"jobtitle"`
	Company    string   `mapstructure:"company"`
	Location   string   `mapstructure:"formattedLocation"`
	JobTypes   []string `mapstructure:"jobTypes"`
	Experience string   `mapstructure:"experience"`
	Salary     string   `mapstructure:"salarySnippet"`
	URL        string   `mapstructure:"url"`
	Snippet    string   `mapstructure:"snippet"`
}

func (r indeedRecord) posting() jobs.Posting {
	return jobs.Posting{
		Title:           r.JobTitle,
		Company:         r.Company,
		Experience:      r.Experience,
		WorkArrangement: strings.Join(r.JobTypes, ", "),
		Location:        r.Location,
		Salary:          r.Salary,
		ApplyLink:       r.URL,
		Description:     r.Snippet,
	}
}

type googleJobsRecord struct {
	Title       string `mapstructure:"title"`
	CompanyName string `mapstructure:"company_name"`
	Location    string `mapstructure:"location"`
	Extensions  struct {
		ScheduleType string `mapstructure:"schedule_type"`
		WorkFromHome bool   `mapstructure:"work_from_home"`
		Salary       string `mapstructure:"salary"`
		Experience   string `mapstructure:"experience"`
	} `mapstructure:"detected_extensions"`
	ShareLink   string `mapstructure:"share_link"`
	Description string `mapstructure:"description"`
}

func (r googleJobsRecord) posting() jobs.Posting {
	arrangement := ""
	if r.Extensions.WorkFromHome {
		arrangement = jobs.Remote
	}
	return jobs.Posting{
		Title:           r.Title,
		Company:         r.CompanyName,
		Experience:      r.Extensions.Experience,
		WorkArrangement: arrangement,
		Location:        r.Location,
		Salary:          r.Extensions.Salary,
		ApplyLink:       r.ShareLink,
		Description:     r.Description,
	}
}

type glassdoorRecord struct {
	JobTitle string `mapstructure:"jobTitle"`
	Employer struct {
		Name string `mapstructure:"name"`
	} `mapstructure:"employer"`
	LocationName   string `mapstructure:"locationName"`
	RemoteWorkType string `mapstructure:"remoteWorkType"`
	Experience     string `mapstructure:"experience"`
	SalaryText     string `mapstructure:"salaryText"`
	JobViewURL     string `mapstructure:"jobViewUrl"`
	Description    string `mapstructure:"jobDescription"`
}

func (r glassdoorRecord) posting() jobs.Posting {
	return jobs.Posting{
		Title:           r.JobTitle,
		Company:         r.Employer.Name,
		Experience:      r.Experience,
		WorkArrangement: r.RemoteWorkType,
		Location:        r.LocationName,
		Salary:          r.SalaryText,
		ApplyLink:       r.JobViewURL,
		Description:     r.Description,
	}
}

type rozeeRecord struct {
	Title       string `mapstructure:"title"`
	CompanyName string `mapstructure:"company_name"`
	City        string `mapstructure:"city"`
	Country     string `mapstructure:"country"`
	JobType     string `mapstructure:"type"`
	Experience  string `mapstructure:"experience"`
	Salary      string `mapstructure:"salary"`
	Permalink   string `mapstructure:"permalink"`
	Description string `mapstructure:"description"`
}

func (r rozeeRecord) posting() jobs.Posting {
	location := r.City
	if r.Country != "" {
		if location != "" {
			location += ", "
		}
		location += r.Country
	}

	link := r.Permalink
	if link != "" && !strings.HasPrefix(link, "http") {
		link = "https://www.rozee.pk/" + strings.TrimPrefix(link, "/")
	}

	return jobs.Posting{
		Title:           r.Title,
		Company:         r.CompanyName,
		Experience:      r.Experience,
		WorkArrangement: r.JobType,
		Location:        location,
		Salary:          r.Salary,
		ApplyLink:       link,
		Description:     r.Description,
	}
}
