package tree

// weatherX / weatherY are the classic "play tennis" data:
// Outlook, Temperature, Humidity, Wind.
var weatherFeatures = []string{"Outlook", "Temperature", "Humidity", "Wind"}

var weatherX = [][]string{
	{"Sunny", "Hot", "High", "Weak"},
	{"Sunny", "Hot", "High", "Strong"},
	{"Overcast", "Hot", "High", "Weak"},
	{"Rain", "Mild", "High", "Weak"},
	{"Rain", "Cool", "Normal", "Weak"},
	{"Rain", "Cool", "Normal", "Strong"},
	{"Overcast", "Cool", "Normal", "Strong"},
	{"Sunny", "Mild", "High", "Weak"},
	{"Sunny", "Cool", "Normal", "Weak"},
	{"Rain", "Mild", "Normal", "Weak"},
	{"Sunny", "Mild", "Normal", "Strong"},
	{"Overcast", "Mild", "High", "Strong"},
	{"Overcast", "Hot", "Normal", "Weak"},
	{"Rain", "Mild", "High", "Strong"},
}

var weatherY = []string{
	"No", "No", "Yes", "Yes", "Yes", "No", "Yes",
	"No", "Yes", "Yes", "Yes", "Yes", "Yes", "No",
}
